package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/domain/user"
)

const identityKey = "identity"

var ErrInvalidToken = errors.New("トークンが不正です")

// Claims は認証トークンのクレーム（sub に利用者ID、role にロール）
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken は利用者IDとロールを含むHS256トークンを発行する
// ログイン機能は持たないため、テストと運用ツールからのみ使う
func SignToken(secret, userID string, role user.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken はトークンを検証して呼び出し元の情報を返す
func ParseToken(secret, tokenString string) (user.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return user.Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return user.Identity{}, ErrInvalidToken
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return user.Identity{}, ErrInvalidToken
	}
	return user.Identity{UserID: claims.Subject, Role: role}, nil
}

// JWTAuth は Authorization: Bearer <token> を検証し、呼び出し元の情報をコンテキストに設定する
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証ヘッダーが必要です")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証ヘッダーの形式が不正です")
			}
			identity, err := ParseToken(secret, parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンが無効または期限切れです")
			}
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// RequireRole は指定ロール以外のアクセスを 403 で拒否する
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}
			for _, r := range roles {
				if identity.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "この操作を行う権限がありません")
		}
	}
}

// SetIdentity は呼び出し元の情報をコンテキストに設定する
func SetIdentity(c echo.Context, identity user.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom はコンテキストから呼び出し元の情報を取り出す
func IdentityFrom(c echo.Context) (user.Identity, bool) {
	identity, ok := c.Get(identityKey).(user.Identity)
	return identity, ok
}
