package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session 服务端会话模型
// 主键是随机生成的不透明 ID，通过 Cookie 下发给浏览器
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Username  string    `json:"username" gorm:"size:50;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (Session) TableName() string {
	return "sessions"
}

// GenerateSessionID 生成随机会话 ID
func GenerateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsExpired 检查会话是否过期
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
