package api

import (
	"net/http"

	"expensebook/middleware"

	"github.com/gin-gonic/gin"
)

// pageData 组装模板通用数据，带上当前登录用户名供导航栏使用
func pageData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if name := middleware.GetCurrentUsername(c); name != "" {
		data["CurrentUser"] = name
	}
	return data
}

// forbidden 统一的 403 页面
// 记录不存在和记录属于他人返回同样的结果，不泄露记录是否存在
func forbidden(c *gin.Context) {
	c.HTML(http.StatusForbidden, "error.html", pageData(c, gin.H{
		"Title":   "无权访问",
		"Message": "您没有权限访问该资源",
	}))
	c.Abort()
}

// internalError 统一的 500 页面
func internalError(c *gin.Context, err error, fallback string) {
	c.HTML(http.StatusInternalServerError, "error.html", pageData(c, gin.H{
		"Title":   "服务器错误",
		"Message": SafeErrorMessage(err, fallback),
	}))
	c.Abort()
}
