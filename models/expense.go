package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
// 金额以整数分存储，避免浮点数舍入误差
type Expense struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	ExpenseDate time.Time      `json:"expense_date" gorm:"not null"`
	Category    string         `json:"category" gorm:"size:50;not null"`
	AmountCents int64          `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Description string         `json:"description" gorm:"size:255;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// AmountString 金额的十进制表示，用于页面和导出
// 值接收者，模板里对切片元素也能直接调用
func (e Expense) AmountString() string {
	return fmt.Sprintf("%d.%02d", e.AmountCents/100, e.AmountCents%100)
}

// Category 消费类别常量
// 类别由页面下拉框提供，数据库不做枚举约束
const (
	CategoryFood      = "Food"
	CategoryTransport = "Transport"
	CategoryHealth    = "Health"
	CategoryFun       = "Fun"
)

// GetCategories 获取所有消费类别
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryHealth,
		CategoryFun,
	}
}
