package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expensebook/models"
	"expensebook/session"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 认证服务：注册校验、登录验证和会话建立
type AuthService struct {
	db         *gorm.DB
	sessions   session.Store
	sessionTTL time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(db *gorm.DB, sessions session.Store, sessionTTL time.Duration) *AuthService {
	return &AuthService{db: db, sessions: sessions, sessionTTL: sessionTTL}
}

// Register 用户注册
// 规则：用户名至少 4 个字符且未被占用，密码至少 8 个字符且包含数字
func (s *AuthService) Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	if len([]rune(username)) < 4 {
		return nil, &ValidationError{Field: "username", Message: "用户名长度至少为 4 个字符"}
	}

	var existing models.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, &ValidationError{Field: "username", Message: "用户名已被占用，请换一个"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := models.User{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return &user, nil
}

// Attempt 登录验证
// 成功时销毁 priorSessionID 指向的旧会话并建立新会话（防止会话固定攻击），
// 用户名和密码错误返回不同的 AuthError
func (s *AuthService) Attempt(username, password, priorSessionID string) (*models.Session, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AuthError{Field: "username", Message: "用户名不存在"}
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &AuthError{Field: "password", Message: "密码错误"}
	}

	return s.StartSession(&user, priorSessionID)
}

// StartSession 为用户建立新会话，旧会话 ID 一并作废
func (s *AuthService) StartSession(user *models.User, priorSessionID string) (*models.Session, error) {
	if priorSessionID != "" {
		_ = s.sessions.Destroy(priorSessionID)
	}

	id, err := models.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("生成会话 ID 失败: %w", err)
	}
	sess := models.Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(&sess); err != nil {
		return nil, fmt.Errorf("保存会话失败: %w", err)
	}
	return &sess, nil
}

// Logout 注销会话，重复调用是安全的空操作
func (s *AuthService) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Destroy(sessionID)
}

// ValidatePassword 校验密码策略，密码重置流程复用注册时的规则
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "密码长度至少为 8 个字符"}
	}
	if !strings.ContainsAny(password, "0123456789") {
		return &ValidationError{Field: "password", Message: "密码必须包含至少一个数字"}
	}
	return nil
}
