package api

import (
	"net/http"
	"strconv"
	"time"

	"expensebook/database"
	"expensebook/middleware"
	"expensebook/models"
	"expensebook/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录页面处理器
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{
		expenses: service.NewExpenseService(database.GetDB()),
	}
}

// currentUser 加载当前会话对应的用户
// 用户不存在（例如刚被删除）时按无权访问处理
func currentUser(c *gin.Context) (*models.User, bool) {
	userID := middleware.GetCurrentUserID(c)
	if userID == 0 {
		forbidden(c)
		return nil, false
	}
	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		forbidden(c)
		return nil, false
	}
	return &user, true
}

// Index 消费记录列表页，支持分页和年月筛选
func (h *ExpenseHandler) Index(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now()
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(service.DefaultPageSize)))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))

	// 与服务层相同的参数收紧，保证页面展示的页码一致
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}
	if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}

	expenses, err := h.expenses.List(user, year, month, page, pageSize)
	if err != nil {
		internalError(c, err, "查询消费记录失败")
		return
	}

	total, err := h.expenses.Count(service.Criteria{UserID: user.ID, Year: year, Month: month})
	if err != nil {
		internalError(c, err, "统计消费记录失败")
		return
	}

	years, err := h.expenses.AvailableYears(user)
	if err != nil {
		internalError(c, err, "查询年份失败")
		return
	}
	if len(years) == 0 {
		years = []int{now.Year()}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	c.HTML(http.StatusOK, "expenses_index.html", pageData(c, gin.H{
		"Expenses":   expenses,
		"Page":       page,
		"PageSize":   pageSize,
		"Total":      total,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    totalPages > 0 && page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"Years":      years,
		"Year":       year,
		"Month":      month,
		"Months":     monthNumbers(),
	}))
}

// ShowCreate 新建消费记录页面
func (h *ExpenseHandler) ShowCreate(c *gin.Context) {
	c.HTML(http.StatusOK, "expense_create.html", pageData(c, gin.H{
		"Categories": models.GetCategories(),
	}))
}

// Create 提交新建
// 校验失败时回显错误和用户已填写的内容
func (h *ExpenseHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	amount := c.PostForm("amount")
	description := c.PostForm("description")
	category := c.PostForm("category")
	dateStr := c.PostForm("date")

	renderErr := func(status int, message string) {
		c.HTML(status, "expense_create.html", pageData(c, gin.H{
			"Error":      message,
			"Categories": models.GetCategories(),
			"Old": gin.H{
				"Amount":      amount,
				"Description": description,
				"Category":    category,
				"Date":        dateStr,
			},
		}))
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		renderErr(http.StatusBadRequest, "日期格式错误，应为: 2006-01-02")
		return
	}

	if _, err := h.expenses.Create(user, amount, description, date, category); err != nil {
		if ve, ok := service.AsValidation(err); ok {
			renderErr(http.StatusBadRequest, ve.Message)
			return
		}
		renderErr(http.StatusInternalServerError, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	c.Redirect(http.StatusFound, "/expenses")
}

// ShowEdit 编辑消费记录页面
func (h *ExpenseHandler) ShowEdit(c *gin.Context) {
	expense, ok := h.requireOwnedExpense(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "expense_edit.html", pageData(c, gin.H{
		"Expense":    expense,
		"Categories": models.GetCategories(),
		"Old": gin.H{
			"Amount":      expense.AmountString(),
			"Description": expense.Description,
			"Category":    expense.Category,
			"Date":        expense.ExpenseDate.Format("2006-01-02"),
		},
	}))
}

// Update 提交编辑
func (h *ExpenseHandler) Update(c *gin.Context) {
	expense, ok := h.requireOwnedExpense(c)
	if !ok {
		return
	}

	amount := c.PostForm("amount")
	description := c.PostForm("description")
	category := c.PostForm("category")
	dateStr := c.PostForm("date")

	renderErr := func(status int, message string) {
		c.HTML(status, "expense_edit.html", pageData(c, gin.H{
			"Error":      message,
			"Expense":    expense,
			"Categories": models.GetCategories(),
			"Old": gin.H{
				"Amount":      amount,
				"Description": description,
				"Category":    category,
				"Date":        dateStr,
			},
		}))
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		renderErr(http.StatusBadRequest, "日期格式错误，应为: 2006-01-02")
		return
	}

	if err := h.expenses.Update(expense, amount, description, date, category); err != nil {
		if ve, ok := service.AsValidation(err); ok {
			renderErr(http.StatusBadRequest, ve.Message)
			return
		}
		renderErr(http.StatusInternalServerError, SafeErrorMessage(err, "更新消费记录失败"))
		return
	}

	c.Redirect(http.StatusFound, "/expenses")
}

// Delete 删除消费记录
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expense, ok := h.requireOwnedExpense(c)
	if !ok {
		return
	}

	if err := h.expenses.Delete(expense.ID); err != nil {
		internalError(c, err, "删除消费记录失败")
		return
	}

	c.Redirect(http.StatusFound, "/expenses")
}

func monthNumbers() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}
