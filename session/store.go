// Package session 提供服务端会话存储
// 会话以不透明随机 ID 为键，替代把用户状态塞进全局变量的做法
package session

import (
	"errors"
	"fmt"

	"expensebook/models"

	"gorm.io/gorm"
)

// ErrNotFound 会话不存在或已过期
var ErrNotFound = errors.New("会话不存在")

// Store 会话存储接口
type Store interface {
	// Get 按 ID 取回会话，过期会话视同不存在
	Get(id string) (*models.Session, error)
	// Save 写入或覆盖会话
	Save(sess *models.Session) error
	// Destroy 删除会话，ID 不存在时不报错
	Destroy(id string) error
}

// GormStore 基于数据库的会话存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建数据库会话存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get 取回会话，过期的行顺手删除
func (s *GormStore) Get(id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var sess models.Session
	if err := s.db.Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}
	if sess.IsExpired() {
		_ = s.Destroy(id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save 写入会话
func (s *GormStore) Save(sess *models.Session) error {
	if err := s.db.Save(sess).Error; err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// Destroy 删除会话
func (s *GormStore) Destroy(id string) error {
	if id == "" {
		return nil
	}
	if err := s.db.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}
