package savoury

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/GioMjds/Savoury-sub000/middleware"
	model "github.com/GioMjds/Savoury-sub000/models"
	"github.com/GioMjds/Savoury-sub000/service"
	"github.com/gin-gonic/gin"
)

type Engine struct {
	config *Config

	UserService         *service.UserService
	RecipeService       *service.RecipeService
	LikeService         *service.LikeService
	CommentService      *service.CommentService
	RatingService       *service.RatingService
	NotificationService *service.NotificationService
	AuthService         *service.AuthService // 鉴权服务

	WsServer  *WsServer
	Backplane *Backplane
}

var (
	Instance *Engine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *Engine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "sv_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &Engine{config: c}

		// 初始化 WS
		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// 跨实例广播（RDB 为空时退化为本地投递）
		Instance.Backplane = NewBackplane(c.RDB, c.BackplaneChannel, Instance.WsServer)
		go Instance.Backplane.Run(context.Background())

		// 初始化基础 Service，注入房间广播回调
		baseService := &service.Service{
			DB:           c.DB,
			RDB:          c.RDB,
			TablePrefix:  c.TablePrefix,
			RoomNotifier: Instance.Backplane.Publish,
		}

		// 初始化各个 Service
		Instance.NotificationService = service.NewNotificationService(baseService)
		baseService.Notify = Instance.NotificationService

		Instance.UserService = service.NewUserService(baseService)
		Instance.RecipeService = service.NewRecipeService(baseService)
		Instance.LikeService = service.NewLikeService(baseService)
		Instance.CommentService = service.NewCommentService(baseService)
		Instance.RatingService = service.NewRatingService(baseService)
		Instance.AuthService = service.NewAuthService(c.RDB) // 初始化鉴权服务

		// 迁移表
		if c.DB != nil {
			if err := Instance.AutoMigrate(); err != nil {
				log.Printf("AutoMigrate failed: %v", err)
			}
		}

		// 绑定 WS 上行事件处理
		Instance.bindWsHandlersOnMessage()
	})

	return Instance
}

func (c *Engine) AutoMigrate() error {
	db := c.config.DB
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.User{},
		&model.Recipe{},
		&model.RecipeLike{},
		&model.RecipeComment{},
		&model.RecipeRating{},
		&model.Notification{},
	)
}

// ServeWS 处理 WebSocket 请求。
// token 从请求里抽（Bearer 或 ?token=），换出 userID 后才升级连接；
// 连接身份由这里定死，后续 join-user-room 等事件都按这个身份校验。
func (c *Engine) ServeWS(w http.ResponseWriter, r *http.Request) {
	uid, _, err := c.AuthService.AuthenticateRequest(r.Context(), r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	nickname, avatar := "", ""
	if user, err := c.UserService.GetUser(uid); err == nil && user != nil {
		nickname, avatar = user.Nickname, user.Avatar
	}
	c.WsServer.ServeWS(w, r, uid, nickname, avatar)
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 Engine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := savoury.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
func (c *Engine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}
