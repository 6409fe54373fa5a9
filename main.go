package main

import (
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"expensebook/config"
	"expensebook/database"
	"expensebook/middleware"
	"expensebook/router"
)

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("记账本 v1.0.0")
		return
	}

	// .env 文件不存在时静默忽略
	_ = godotenv.Load()

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	// 记住我令牌签名密钥
	middleware.InitTokens(cfg)

	r := router.SetupRouter(cfg)

	log.Printf("==========================================")
	log.Printf("  📒 记账本已启动")
	log.Printf("==========================================")
	log.Printf("  消费记录: http://localhost%s/expenses", cfg.Server.Port)
	log.Printf("  登录页面: http://localhost%s/login", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
