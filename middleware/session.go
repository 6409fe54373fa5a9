package middleware

import (
	"net/http"

	"expensebook/config"
	"expensebook/database"
	"expensebook/models"
	"expensebook/service"
	"expensebook/session"

	"github.com/gin-gonic/gin"
)

// gin 上下文里缓存的会话信息键
const (
	ContextUserIDKey    = "userID"
	ContextUsernameKey  = "username"
	ContextSessionIDKey = "sessionID"
)

// SessionAuth 会话认证中间件
// Cookie 里的会话有效则放行，否则尝试用记住我令牌重建会话，
// 都不行时跳转到登录页
func SessionAuth(cfg *config.Config, store session.Store, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(cfg.Session.CookieName); err == nil && id != "" {
			if sess, err := store.Get(id); err == nil {
				setSessionContext(c, sess)
				c.Next()
				return
			}
		}

		// 会话缺失或过期，尝试记住我令牌
		if sess := trySessionFromRememberToken(c, cfg, auth); sess != nil {
			SetSessionCookie(c, cfg, sess.ID)
			setSessionContext(c, sess)
			c.Next()
			return
		}

		ClearSessionCookie(c, cfg)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// trySessionFromRememberToken 用有效的记住我令牌换取一个新会话
func trySessionFromRememberToken(c *gin.Context, cfg *config.Config, auth *service.AuthService) *models.Session {
	token, err := c.Cookie(RememberCookieName)
	if err != nil || token == "" {
		return nil
	}
	claims, err := ParseRememberToken(token)
	if err != nil {
		return nil
	}

	// 令牌有效也要确认用户仍然存在
	var user models.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return nil
	}

	sess, err := auth.StartSession(&user, "")
	if err != nil {
		return nil
	}
	return sess
}

func setSessionContext(c *gin.Context, sess *models.Session) {
	c.Set(ContextUserIDKey, sess.UserID)
	c.Set(ContextUsernameKey, sess.Username)
	c.Set(ContextSessionIDKey, sess.ID)
}

// GetCurrentUserID 获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentUsername 获取当前登录用户名
func GetCurrentUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsernameKey); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// GetCurrentSessionID 获取当前会话 ID
func GetCurrentSessionID(c *gin.Context) string {
	if sessionID, exists := c.Get(ContextSessionIDKey); exists {
		if id, ok := sessionID.(string); ok {
			return id
		}
	}
	return ""
}

// SetSessionCookie 下发会话 Cookie
func SetSessionCookie(c *gin.Context, cfg *config.Config, sessionID string) {
	secure, sameSite := cookieOptions(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(cfg.Session.CookieName, sessionID, int(cfg.Session.ExpireTime.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie 清除会话 Cookie
func ClearSessionCookie(c *gin.Context, cfg *config.Config) {
	secure, sameSite := cookieOptions(cfg)
	c.SetSameSite(sameSite)
	c.SetCookie(cfg.Session.CookieName, "", -1, "/", "", secure, true)
}

// cookieOptions 根据运行模式返回 Cookie 的安全选项
// release 模式下启用 Secure（仅 HTTPS 传输），SameSite=Lax 防止跨站 POST 携带 Cookie
func cookieOptions(cfg *config.Config) (secure bool, sameSite http.SameSite) {
	if cfg != nil && cfg.Server.Mode == "release" {
		secure = true
	}
	sameSite = http.SameSiteLaxMode
	return
}
