package main

import (
	"log"

	savoury "github.com/GioMjds/Savoury-sub000"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/savoury_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 2. Redis：token 会话 + 跨实例房间广播都依赖它
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	// 3. 初始化引擎（单例模式，全局只需调用一次）
	engine := savoury.NewEngine(
		savoury.WithDB(db),
		savoury.WithRDB(rdb),
		savoury.WithTablePrefix("sv_"),
		savoury.WithBackplaneChannel("sv:room_events"),
	)

	// 4. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	savoury.RegisterSwagger(r, "/swagger/*any")

	// 5. 内置路由：HTTP API + WebSocket 入口
	// 客户端连接：ws://localhost:8080/ws?token=<登录返回的 token>
	// 连上后发 {"type":"join-user-room","user_id":<自己的id>} 开始收通知
	engine.RegisterGinRoutes(r, "/api/v1")

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
