package router

import (
	"html/template"
	"net/http"
	"time"

	"expensebook/api"
	"expensebook/config"
	"expensebook/database"
	"expensebook/middleware"
	"expensebook/service"
	"expensebook/session"
	"expensebook/web"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// 嵌入的页面模板
	tmpl := template.Must(template.New("").ParseFS(web.TemplatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	store := session.NewGormStore(database.GetDB())
	authService := service.NewAuthService(database.GetDB(), store, cfg.Session.ExpireTime)

	authHandler := api.NewAuthHandler(cfg)
	expenseHandler := api.NewExpenseHandler()
	exportHandler := api.NewExportHandler()
	passwordResetHandler := api.NewPasswordResetHandler(cfg)

	// 登录和注册共用一个限流器
	loginLimit := middleware.LoginRateLimit(10, time.Minute)

	// 无需登录的路由
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", loginLimit, authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", loginLimit, authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// 密码重置（无需登录）
	r.GET("/password/forgot", passwordResetHandler.ShowForgot)
	r.POST("/password/forgot", passwordResetHandler.RequestReset)
	r.GET("/password/reset", passwordResetHandler.ShowReset)
	r.POST("/password/reset", passwordResetHandler.Reset)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/expenses")
	})

	// 需要会话认证的路由
	authorized := r.Group("")
	authorized.Use(middleware.SessionAuth(cfg, store, authService))
	{
		expenses := authorized.Group("/expenses")
		{
			expenses.GET("", expenseHandler.Index)
			expenses.GET("/new", expenseHandler.ShowCreate)
			expenses.POST("", expenseHandler.Create)
			expenses.GET("/:id/edit", expenseHandler.ShowEdit)
			expenses.POST("/:id", expenseHandler.Update)
			expenses.POST("/:id/delete", expenseHandler.Delete)
		}

		export := authorized.Group("/export")
		{
			export.GET("/csv", exportHandler.ExportCSV)
			export.GET("/excel", exportHandler.ExportExcel)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}
