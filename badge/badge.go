// Package badge 维护客户端侧的未读角标近似值。
// 事件通道是房间广播不是严格的按收件人投递，所以接收端必须自己按 recipient 过滤；
// 本地加减只是低延迟的展示优化，权威值永远以周期拉取的未读数为准。
package badge

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// 与下行事件 type 对应
const (
	eventNewNotification     = "new-notification"
	eventNotificationRemoved = "notification-removed"
)

// FetchFunc 拉取权威未读数（通常打 /notification/unread_count）。
type FetchFunc func(ctx context.Context) (int64, error)

// Synchronizer 未读角标 reducer。
// 对乱序、at-least-once 的事件流保持最终一致：单个事件允许让本地值漂移，
// Reconcile 会用权威值整体覆盖。
type Synchronizer struct {
	userID uint64
	fetch  FetchFunc

	mu    sync.Mutex
	count int64
}

func NewSynchronizer(userID uint64, fetch FetchFunc) *Synchronizer {
	return &Synchronizer{userID: userID, fetch: fetch}
}

// wireEvent 只解广播事件里 badge 关心的字段。
type wireEvent struct {
	Type        string `json:"type"`
	RecipientID uint64 `json:"recipient_id"`
}

// Apply 消费一条广播事件（原始 JSON）。
// - new-notification：recipient_id 必须等于自己，否则忽略（错投/旁听过滤）
// - notification-removed：recipient_id 缺省或等于自己才生效，减到 0 为止
// 其他事件类型一律忽略。
// 返回值表示本地计数是否变化（调用方可据此触发通知列表的失效重拉）。
func (s *Synchronizer) Apply(raw []byte) bool {
	var evt wireEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt.Type {
	case eventNewNotification:
		if evt.RecipientID != s.userID {
			return false
		}
		s.count++
		return true
	case eventNotificationRemoved:
		if evt.RecipientID != 0 && evt.RecipientID != s.userID {
			return false
		}
		if s.count > 0 {
			s.count--
		}
		return true
	default:
		return false
	}
}

// Count 当前本地近似值。
func (s *Synchronizer) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reconcile 用权威未读数覆盖本地值。漂移在这里一次性修正。
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	if s.fetch == nil {
		return nil
	}
	n, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.count = n
	s.mu.Unlock()
	return nil
}

// Run 周期校准，ctx 取消时退出。校准失败跳过本轮（下一轮再试）。
func (s *Synchronizer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Reconcile(ctx)
		}
	}
}
