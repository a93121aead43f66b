package service

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// RoomNotifier 按房间 key 广播事件的回调函数。
	// 房间成员表由 WS 层维护，service 层只关心“往哪个房间发什么”，
	// 通过函数注入避免 service 反向依赖 WS 层。
	// 配置了 Redis backplane 时该回调会先走 pub/sub，再由各实例投递本地成员。
	RoomNotifier func(roomKey string, message []byte)

	// Notify 通知服务（统一落库 + 房间推送 + HTTP 拉取）
	Notify *NotificationService
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(name)
}
