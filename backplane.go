package savoury

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

// Backplane 跨实例房间广播。
// 房间成员表是各实例进程内的（单实例部署会把用户按实例切开），
// 所以广播统一走 Redis pub/sub：谁都往同一个 channel 发，
// 每个实例（含发布者自己）从订阅里收，再投给本地房间成员。
// Redis 未配置时 Publish 退化为只投本地。
type Backplane struct {
	rdb     *redis.Client
	channel string
	hub     *WsServer
}

// roomEnvelope pub/sub 信封：房间 key + 已序列化的事件体。
type roomEnvelope struct {
	RoomKey string          `json:"room_key"`
	Payload json.RawMessage `json:"payload"`
}

func NewBackplane(rdb *redis.Client, channel string, hub *WsServer) *Backplane {
	if channel == "" {
		channel = "sv:room_events"
	}
	return &Backplane{rdb: rdb, channel: channel, hub: hub}
}

// Publish 房间广播入口（service 层的 RoomNotifier 注入的就是它）。
// 有 Redis 时只发 pub/sub，本地投递由自己的订阅回路完成，
// 避免“本地投一次 + 订阅又投一次”的重复。
func (b *Backplane) Publish(roomKey string, payload []byte) {
	if b.rdb == nil {
		b.hub.BroadcastToRoom(roomKey, payload)
		return
	}

	env, err := json.Marshal(roomEnvelope{RoomKey: roomKey, Payload: payload})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(context.Background(), b.channel, env).Err(); err != nil {
		// pub/sub 挂了降级本地投递，至少本实例的用户还能收到
		log.Printf("backplane publish failed, fallback to local: %v", err)
		b.hub.BroadcastToRoom(roomKey, payload)
	}
}

// Run 订阅回路：收到信封后投给本地房间成员。ctx 取消时退出。
func (b *Backplane) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env roomEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("backplane: bad envelope: %v", err)
				continue
			}
			b.hub.BroadcastToRoom(env.RoomKey, env.Payload)
		}
	}
}
