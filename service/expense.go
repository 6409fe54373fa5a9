package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expensebook/models"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize 列表页默认每页条数
	DefaultPageSize = 20
	// MaxPageSize 每页条数上限，防止查询参数拖垮数据库
	MaxPageSize = 100
)

// Criteria 列表和计数查询的过滤条件
// Year/Month 同时大于 0 时按自然月过滤
type Criteria struct {
	UserID uint
	Year   int
	Month  int
}

// ExpenseService 消费记录服务：业务校验与持久化编排
type ExpenseService struct {
	db *gorm.DB
}

// NewExpenseService 创建消费记录服务
func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

// validate 统一校验金额、描述和类别，amount 为表单原始字符串
func (s *ExpenseService) validate(amount, description, category string) (int64, string, string, error) {
	cents, err := ParseAmountCents(amount)
	if err != nil {
		return 0, "", "", err
	}
	if cents <= 0 {
		return 0, "", "", &ValidationError{Field: "amount", Message: "金额必须大于 0"}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, "", "", &ValidationError{Field: "description", Message: "请输入描述"}
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, "", "", &ValidationError{Field: "category", Message: "请选择类别"}
	}
	return cents, description, category, nil
}

// Create 创建一条归属当前用户的消费记录
func (s *ExpenseService) Create(user *models.User, amount, description string, date time.Time, category string) (*models.Expense, error) {
	cents, description, category, err := s.validate(amount, description, category)
	if err != nil {
		return nil, err
	}

	expense := models.Expense{
		UserID:      user.ID,
		ExpenseDate: date,
		Category:    category,
		AmountCents: cents,
		Description: description,
	}
	if err := s.db.Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("创建消费记录失败: %w", err)
	}
	return &expense, nil
}

// Update 更新消费记录，归属用户不变
func (s *ExpenseService) Update(expense *models.Expense, amount, description string, date time.Time, category string) error {
	cents, description, category, err := s.validate(amount, description, category)
	if err != nil {
		return err
	}

	expense.AmountCents = cents
	expense.Description = description
	expense.ExpenseDate = date
	expense.Category = category
	if err := s.db.Save(expense).Error; err != nil {
		return fmt.Errorf("更新消费记录失败: %w", err)
	}
	return nil
}

// Delete 删除消费记录
// 归属校验由调用方（页面处理器）负责
func (s *ExpenseService) Delete(id uint) error {
	if err := s.db.Delete(&models.Expense{}, id).Error; err != nil {
		return fmt.Errorf("删除消费记录失败: %w", err)
	}
	return nil
}

// Find 按 ID 查找消费记录，不做归属校验
func (s *ExpenseService) Find(id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return &expense, nil
}

// List 分页查询用户的消费记录，按日期倒序
// page 和 pageSize 来自查询参数，这里统一收紧到安全范围
func (s *ExpenseService) List(user *models.User, year, month, page, pageSize int) ([]models.Expense, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := s.monthQuery(Criteria{UserID: user.ID, Year: year, Month: month})

	var expenses []models.Expense
	offset := (page - 1) * pageSize
	if err := query.Order("expense_date DESC").Offset(offset).Limit(pageSize).Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return expenses, nil
}

// Count 按条件统计记录数，供分页控件使用
func (s *ExpenseService) Count(c Criteria) (int64, error) {
	var total int64
	if err := s.monthQuery(c).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计消费记录失败: %w", err)
	}
	return total, nil
}

// AvailableYears 用户有记录的年份，倒序，供筛选下拉框使用
func (s *ExpenseService) AvailableYears(user *models.User) ([]int, error) {
	// YEAR() 是 MySQL 语法，sqlite 用 strftime 取年份
	yearExpr := "YEAR(expense_date)"
	if s.db.Dialector.Name() == "sqlite" {
		yearExpr = "CAST(strftime('%Y', expense_date) AS INTEGER)"
	}

	var years []int
	err := s.db.Model(&models.Expense{}).
		Where("user_id = ?", user.ID).
		Distinct().
		Order(yearExpr+" DESC").
		Pluck(yearExpr, &years).Error
	if err != nil {
		return nil, fmt.Errorf("查询年份失败: %w", err)
	}
	return years, nil
}

// monthQuery 构建带用户和可选年月过滤的查询
// 年月过滤用日期区间表达，两种数据库驱动行为一致
func (s *ExpenseService) monthQuery(c Criteria) *gorm.DB {
	query := s.db.Model(&models.Expense{}).Where("user_id = ?", c.UserID)
	if c.Year > 0 && c.Month >= 1 && c.Month <= 12 {
		start := time.Date(c.Year, time.Month(c.Month), 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(0, 1, 0)
		query = query.Where("expense_date >= ? AND expense_date < ?", start, end)
	}
	return query
}

// FindInRange 查询用户在日期区间内的记录，导出功能使用
func (s *ExpenseService) FindInRange(user *models.User, start, end time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.Where("user_id = ? AND expense_date >= ? AND expense_date <= ?", user.ID, start, end).
		Order("expense_date DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return expenses, nil
}
