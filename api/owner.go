package api

import (
	"errors"
	"strconv"

	"expensebook/middleware"
	"expensebook/models"
	"expensebook/service"

	"github.com/gin-gonic/gin"
)

// requireOwnedExpense 归属校验闸门：加载路径参数指向的记录并确认属于当前用户
// 记录不存在、ID 非法和记录属于他人一律返回同一个 403，
// 编辑、更新、删除共用这一个入口
func (h *ExpenseHandler) requireOwnedExpense(c *gin.Context) (*models.Expense, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		forbidden(c)
		return nil, false
	}

	expense, err := h.expenses.Find(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			forbidden(c)
		} else {
			internalError(c, err, "查询消费记录失败")
		}
		return nil, false
	}

	if expense.UserID != middleware.GetCurrentUserID(c) {
		forbidden(c)
		return nil, false
	}

	return expense, true
}
