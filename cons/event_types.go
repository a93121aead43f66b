package cons

// WS 上行事件类型（client -> server）
const (
	EventJoinUserRoom    = "join-user-room"    // 加入个人房间 user:<id>
	EventJoinRecipeRoom  = "join-recipe-room"  // 加入菜谱房间 recipe:<id>
	EventLeaveRecipeRoom = "leave-recipe-room" // 离开菜谱房间
	EventLikeRecipe      = "like-recipe"       // 点赞/取消点赞
	EventNewComment      = "new-comment"       // 发表评论
	EventRateRecipe      = "rate-recipe"       // 评分
)

// WS 下行事件类型（server -> client）
const (
	EventNewNotification     = "new-notification"     // 新通知
	EventNotificationRemoved = "notification-removed" // 通知撤销（取消点赞）
	EventCommentAdded        = "comment-added"        // 菜谱房间内新评论
	EventRatingUpdated       = "rating-updated"       // 菜谱评分聚合更新
	EventError               = "error"                // 服务端错误提示
)
