package api

import (
	"net/http"
	"strings"

	"expensebook/config"
	"expensebook/database"
	"expensebook/middleware"
	"expensebook/service"
	"expensebook/session"

	"github.com/gin-gonic/gin"
)

// AuthHandler 注册、登录和注销页面处理器
type AuthHandler struct {
	cfg  *config.Config
	auth *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	store := session.NewGormStore(database.GetDB())
	return &AuthHandler{
		cfg:  cfg,
		auth: service.NewAuthService(database.GetDB(), store, cfg.Session.ExpireTime),
	}
}

// ShowRegister 注册页面
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Register 提交注册
// 表单校验失败时回显错误和已填写的用户名（密码不回显），成功后跳转登录页
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	errors := map[string]string{}
	if username == "" {
		errors["username"] = "请输入用户名"
	}
	if password == "" {
		errors["password"] = "请输入密码"
	}
	if confirmPassword == "" {
		errors["confirm_password"] = "请再次输入密码"
	}
	if password != "" && confirmPassword != "" && password != confirmPassword {
		errors["confirm_password"] = "两次输入的密码不一致"
	}

	if len(errors) > 0 {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Errors":           errors,
			"ExistingUsername": username,
		})
		return
	}

	if _, err := h.auth.Register(username, password); err != nil {
		if ve, ok := service.AsValidation(err); ok {
			errors[ve.Field] = ve.Message
			c.HTML(http.StatusBadRequest, "register.html", gin.H{
				"Errors":           errors,
				"ExistingUsername": username,
			})
			return
		}
		internalError(c, err, "注册失败")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// ShowLogin 登录页面
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login 提交登录
// 用户名不存在和密码错误提示不同的信息，成功后轮换会话 ID 并跳转记账首页
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	errors := map[string]string{}
	if username == "" {
		errors["username"] = "请输入用户名"
	}
	if password == "" {
		errors["password"] = "请输入密码"
	}
	if len(errors) > 0 {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Errors":           errors,
			"ExistingUsername": username,
		})
		return
	}

	// 携带旧会话 ID，登录成功时一并作废，防止会话固定
	priorSessionID, _ := c.Cookie(h.cfg.Session.CookieName)

	sess, err := h.auth.Attempt(username, password, priorSessionID)
	if err != nil {
		if ae, ok := service.AsAuth(err); ok {
			errors[ae.Field] = ae.Message
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"Errors":           errors,
				"ExistingUsername": username,
			})
			return
		}
		internalError(c, err, "登录失败")
		return
	}

	middleware.SetSessionCookie(c, h.cfg, sess.ID)

	// 勾选记住我时下发长期令牌，会话过期后可自动续签
	if c.PostForm("remember") != "" {
		if token, err := middleware.GenerateRememberToken(sess.UserID, sess.Username, h.cfg.Session.RememberTime); err == nil {
			middleware.SetRememberCookie(c, h.cfg, token)
		}
	}

	c.Redirect(http.StatusFound, "/expenses")
}

// Logout 注销
// 没有会话时也直接成功，重复注销是安全的
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(h.cfg.Session.CookieName); err == nil {
		_ = h.auth.Logout(sessionID)
	}
	middleware.ClearSessionCookie(c, h.cfg)
	middleware.ClearRememberCookie(c, h.cfg)

	c.Redirect(http.StatusFound, "/login")
}
