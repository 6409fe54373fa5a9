package middleware

import (
	"errors"
	"time"

	"expensebook/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RememberCookieName 记住我 Cookie 名称
const RememberCookieName = "expensebook_remember"

var tokenSecret []byte

// RememberClaims 记住我令牌的声明
type RememberClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// InitTokens 初始化令牌签名密钥
func InitTokens(cfg *config.Config) {
	tokenSecret = []byte(cfg.Token.Secret)
}

// GenerateRememberToken 生成记住我令牌
func GenerateRememberToken(userID uint, username string, expireTime time.Duration) (string, error) {
	if len(tokenSecret) == 0 {
		return "", errors.New("令牌密钥未初始化")
	}
	claims := RememberClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expireTime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "expensebook",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSecret)
}

// ParseRememberToken 解析并校验记住我令牌
func ParseRememberToken(tokenString string) (*RememberClaims, error) {
	if len(tokenSecret) == 0 {
		return nil, errors.New("令牌密钥未初始化")
	}
	token, err := jwt.ParseWithClaims(tokenString, &RememberClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("非预期的签名算法")
		}
		return tokenSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*RememberClaims)
	if !ok || !token.Valid {
		return nil, errors.New("令牌无效")
	}
	return claims, nil
}

// SetRememberCookie 下发记住我 Cookie
func SetRememberCookie(c *gin.Context, cfg *config.Config, token string) {
	secure, sameSite := cookieOptions(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(RememberCookieName, token, int(cfg.Session.RememberTime.Seconds()), "/", "", secure, true)
}

// ClearRememberCookie 清除记住我 Cookie
func ClearRememberCookie(c *gin.Context, cfg *config.Config) {
	secure, sameSite := cookieOptions(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(RememberCookieName, "", -1, "/", "", secure, true)
}
