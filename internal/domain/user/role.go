package user

import "fmt"

// Role は認証済み利用者のロール
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleUser     Role = "user"
	RoleAttendee Role = "attendee"
)

// ParseRole は文字列をRoleに変換する
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleStaff, RoleUser, RoleAttendee:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// IsSupervisor は引率者（管理者・スタッフ）かを返す
func (r Role) IsSupervisor() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Identity は認証レイヤーから渡される呼び出し元の情報
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin は管理者かを返す
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
