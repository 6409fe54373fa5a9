package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"expensebook/config"
	"expensebook/database"
	"expensebook/models"
	"expensebook/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// 重置链接有效期
const resetTokenTTL = 30 * time.Minute

// PasswordResetHandler 密码重置页面处理器
type PasswordResetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建密码重置处理器
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// ShowForgot 忘记密码页面
func (h *PasswordResetHandler) ShowForgot(c *gin.Context) {
	c.HTML(http.StatusOK, "password_forgot.html", gin.H{})
}

// RequestReset 发送密码重置邮件
// 为了安全，无论邮箱是否注册都显示同样的提示
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		c.HTML(http.StatusBadRequest, "password_forgot.html", gin.H{
			"Error": "请输入邮箱地址",
		})
		return
	}

	sentMessage := "如果该邮箱已绑定账号，您将收到密码重置邮件"

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.HTML(http.StatusOK, "password_forgot.html", gin.H{"Message": sentMessage})
		return
	}

	// 一分钟内只允许发送一次，防止骚扰
	var existingReset models.PasswordReset
	if err := database.DB.Where("user_id = ? AND used = ? AND expires_at > ?",
		user.ID, false, time.Now()).First(&existingReset).Error; err == nil {
		if time.Since(existingReset.CreatedAt) < time.Minute {
			c.HTML(http.StatusTooManyRequests, "password_forgot.html", gin.H{
				"Error": "请求过于频繁，请稍后再试",
			})
			return
		}
		database.DB.Model(&existingReset).Update("used", true)
	}

	token, err := models.GenerateToken()
	if err != nil {
		internalError(c, err, "生成重置令牌失败")
		return
	}

	passwordReset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := database.DB.Create(&passwordReset).Error; err != nil {
		internalError(c, err, "创建重置令牌失败")
		return
	}

	resetLink := fmt.Sprintf("%s/password/reset?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.emailService.SendPasswordResetEmail(email, user.Username, resetLink); err != nil {
		database.DB.Delete(&passwordReset)
		c.HTML(http.StatusInternalServerError, "password_forgot.html", gin.H{
			"Error": SafeErrorMessage(err, "邮件发送失败"),
		})
		return
	}

	c.HTML(http.StatusOK, "password_forgot.html", gin.H{"Message": sentMessage})
}

// ShowReset 重置密码页面，先校验链接里的令牌
func (h *PasswordResetHandler) ShowReset(c *gin.Context) {
	token := c.Query("token")

	reset, ok := h.findValidReset(token)
	if !ok {
		c.HTML(http.StatusBadRequest, "password_forgot.html", gin.H{
			"Error": "重置链接无效或已过期，请重新申请",
		})
		return
	}

	c.HTML(http.StatusOK, "password_reset.html", gin.H{"Token": reset.Token})
}

// Reset 提交新密码
// 新密码沿用注册时的密码策略，成功后作废该用户所有未使用的令牌
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	token := c.PostForm("token")
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	reset, ok := h.findValidReset(token)
	if !ok {
		c.HTML(http.StatusBadRequest, "password_forgot.html", gin.H{
			"Error": "重置链接无效或已过期，请重新申请",
		})
		return
	}

	renderErr := func(message string) {
		c.HTML(http.StatusBadRequest, "password_reset.html", gin.H{
			"Token": reset.Token,
			"Error": message,
		})
	}

	if password == "" || confirmPassword == "" {
		renderErr("请输入新密码并确认")
		return
	}
	if password != confirmPassword {
		renderErr("两次输入的密码不一致")
		return
	}
	if err := service.ValidatePassword(password); err != nil {
		renderErr(err.Error())
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, err, "密码加密失败")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", reset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		internalError(c, err, "更新密码失败")
		return
	}

	// 本令牌连同该用户其余未使用的令牌一起作废
	database.DB.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ?", reset.UserID, false).
		Update("used", true)

	c.Redirect(http.StatusFound, "/login")
}

// findValidReset 按令牌取回有效的重置记录
func (h *PasswordResetHandler) findValidReset(token string) (*models.PasswordReset, bool) {
	if token == "" {
		return nil, false
	}
	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, false
	}
	if !reset.IsValid() {
		return nil, false
	}
	return &reset, true
}
