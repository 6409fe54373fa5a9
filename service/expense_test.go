package service

import (
	"testing"
	"time"

	"expensebook/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestExpenseService_Create_Validation(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)
	user := &models.User{ID: 1, Username: "alice123"}
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local)

	cases := []struct {
		name        string
		amount      string
		description string
		category    string
		field       string
	}{
		{"金额为空", "", "午饭", models.CategoryFood, "amount"},
		{"金额为零", "0", "午饭", models.CategoryFood, "amount"},
		{"金额非法", "abc", "午饭", models.CategoryFood, "amount"},
		{"描述为空", "12.50", "   ", models.CategoryFood, "description"},
		{"类别为空", "12.50", "午饭", "", "category"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(user, c.amount, c.description, date, c.category)
			require.Error(t, err)
			ve, ok := AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, c.field, ve.Field)
		})
	}
}

func TestExpenseService_Create_Success(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)
	user := &models.User{ID: 1, Username: "alice123"}
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	expense, err := svc.Create(user, "12.345", "  午饭  ", date, models.CategoryFood)
	require.NoError(t, err)
	assert.Equal(t, uint(1), expense.UserID)
	// 金额按分存储并四舍五入，描述去掉首尾空白
	assert.Equal(t, int64(1235), expense.AmountCents)
	assert.Equal(t, "午饭", expense.Description)
	assert.Equal(t, models.CategoryFood, expense.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseService_Find_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.Find(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseService_List_MonthFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)
	user := &models.User{ID: 7, Username: "alice123"}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"id", "user_id", "expense_date", "category", "amount_cents", "description"}).
		AddRow(3, 7, time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local), models.CategoryFood, 1250, "午饭").
		AddRow(2, 7, time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local), models.CategoryTransport, 300, "地铁")
	mock.ExpectQuery("SELECT .* FROM `expenses` .*ORDER BY expense_date DESC.*LIMIT 20").
		WithArgs(uint(7), start, end).
		WillReturnRows(rows)

	expenses, err := svc.List(user, 2026, 8, 1, 20)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "12.50", expenses[0].AmountString())
	assert.Equal(t, "3.00", expenses[1].AmountString())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseService_List_SecondPage(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)
	user := &models.User{ID: 7, Username: "alice123"}

	// 第 2 页、每页 10 条：跳过前 10 条
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	mock.ExpectQuery("SELECT .* FROM `expenses` .*LIMIT 10 OFFSET 10").
		WithArgs(uint(7), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	_, err := svc.List(user, 2026, 8, 2, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseService_List_ClampsPaging(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)
	user := &models.User{ID: 7, Username: "alice123"}

	// page=0 和 pageSize=0 收紧为第 1 页、默认每页 20 条
	mock.ExpectQuery("SELECT .* FROM `expenses` .*LIMIT 20").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := svc.List(user, 0, 0, 0, 0)
	require.NoError(t, err)

	// 超过上限的 pageSize 收紧为 100
	mock.ExpectQuery("SELECT .* FROM `expenses` .*LIMIT 100").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = svc.List(user, 0, 0, 1, 1000)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseService_Count(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses`").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := svc.Count(Criteria{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
}

func TestExpenseService_Update(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewExpenseService(db)

	expense := &models.Expense{
		ID:          5,
		UserID:      7,
		ExpenseDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local),
		Category:    models.CategoryFood,
		AmountCents: 1250,
		Description: "午饭",
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	newDate := time.Date(2026, 8, 11, 0, 0, 0, 0, time.Local)
	err := svc.Update(expense, "20.00", "晚饭", newDate, models.CategoryFun)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), expense.AmountCents)
	assert.Equal(t, "晚饭", expense.Description)
	assert.Equal(t, models.CategoryFun, expense.Category)
	assert.Equal(t, newDate, expense.ExpenseDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
