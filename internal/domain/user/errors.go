package user

import "errors"

var (
	ErrChildNotFound     = errors.New("子どもが見つかりません")
	ErrChildNameRequired = errors.New("子どもの名前は必須です")
	ErrParentIDRequired  = errors.New("保護者IDは必須です")
	ErrInvalidRole       = errors.New("ロールが不正です")
)
