package message

import (
	"encoding/json"
	"time"
)

// 上行消息统一带 type 字段，服务端先 probe type 再按事件解析。

// JoinUserRoomReq 加入个人房间。
// user_id 必须等于连接自身的认证身份，否则拒绝（不允许旁听别人的通知）。
type JoinUserRoomReq struct {
	Type   string `json:"type"`    // join-user-room
	UserID uint64 `json:"user_id"` // 个人房间的用户 ID
}

// JoinRecipeRoomReq 加入/离开菜谱房间（菜谱详情页进入/离开时调用）。
type JoinRecipeRoomReq struct {
	Type     string `json:"type"`      // join-recipe-room / leave-recipe-room
	RecipeID uint64 `json:"recipe_id"` // 菜谱 ID
}

// LikeRecipeReq 点赞 toggle。
// is_liked 表示客户端这次操作之后的目标状态：true=点赞 false=取消。
type LikeRecipeReq struct {
	Type     string `json:"type"` // like-recipe
	RecipeID uint64 `json:"recipe_id"`
	IsLiked  bool   `json:"is_liked"`
}

// NewCommentReq 发表评论。
type NewCommentReq struct {
	Type        string `json:"type"` // new-comment
	RecipeID    uint64 `json:"recipe_id"`
	CommentText string `json:"comment_text"`
}

// RateRecipeReq 评分（1-5），重复评分覆盖旧分。
type RateRecipeReq struct {
	Type     string `json:"type"` // rate-recipe
	RecipeID uint64 `json:"recipe_id"`
	Rating   uint8  `json:"rating"`
}

// ---- 下行 payload ----

// SenderBrief 通知里冗余的触发者展示信息，客户端不用再查。
type SenderBrief struct {
	UserID   uint64 `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// RecipeBrief 通知里冗余的菜谱展示信息。
type RecipeBrief struct {
	RecipeID uint64 `json:"recipe_id"`
	Title    string `json:"title"`
}

// NewNotificationEvent 推给 user:<recipient> 房间。
type NewNotificationEvent struct {
	Type           string       `json:"type"` // new-notification
	NotificationID uint64       `json:"notification_id"`
	NotifyType     string       `json:"notify_type"` // like/comment/rating/follow
	Message        string       `json:"message"`
	IsRead         bool         `json:"is_read"`
	RecipientID    uint64       `json:"recipient_id"`
	Sender         SenderBrief  `json:"sender"`
	Recipe         *RecipeBrief `json:"recipe,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NotificationRemovedEvent 取消点赞时推给 user:<recipient> 房间。
// RecipientID 冗余带上，便于客户端在收到错投事件时自行过滤。
type NotificationRemovedEvent struct {
	Type        string `json:"type"`        // notification-removed
	NotifyType  string `json:"notify_type"` // 目前只有 like
	RecipeID    uint64 `json:"recipe_id"`
	SenderID    uint64 `json:"sender_id"`
	RecipientID uint64 `json:"recipient_id,omitempty"`
}

// CommentAddedEvent 推给 recipe:<id> 房间。
type CommentAddedEvent struct {
	Type    string `json:"type"` // comment-added
	Comment struct {
		CommentID   uint64      `json:"comment_id"`
		CommentText string      `json:"comment_text"`
		CreatedAt   time.Time   `json:"created_at"`
		User        SenderBrief `json:"user"`
	} `json:"comment"`
}

// RatingUpdatedEvent 推给 recipe:<id> 房间。
type RatingUpdatedEvent struct {
	Type          string  `json:"type"` // rating-updated
	RecipeID      uint64  `json:"recipe_id"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  uint64  `json:"total_ratings"`
}

// ErrorEvent 服务端处理上行事件失败时的提示（尽力而为，不保证送达）。
type ErrorEvent struct {
	Type    string `json:"type"` // error
	Message string `json:"message"`
}

// ProbeType 只解析 type 字段，决定后续怎么解包。
func ProbeType(raw []byte) string {
	var p struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(raw, &p)
	return p.Type
}
