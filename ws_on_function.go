package savoury

import (
	"encoding/json"
	"log"

	"github.com/GioMjds/Savoury-sub000/cons"
	"github.com/GioMjds/Savoury-sub000/message"
)

// bindWsHandlersOnMessage 将 WS 上行事件分发从 engine.go 抽出来，避免 engine.go 臃肿。
// 放在包根目录（同 WsServer/engine.go 同级），可以直接访问 Instance 与 Client 类型，
// 避免 service 层循环依赖。
//
// 上行事件先 probe type 再按事件解析；业务失败只给发起连接回一条 error 事件，
// 通知/广播类副作用永远不把失败抛回给用户。
func (c *Engine) bindWsHandlersOnMessage() {
	c.WsServer.onMessage = func(client *Client, msg []byte) {
		if client == nil {
			return
		}

		switch message.ProbeType(msg) {
		case cons.EventJoinUserRoom:
			var req message.JoinUserRoomReq
			if err := json.Unmarshal(msg, &req); err != nil || req.UserID == 0 {
				return
			}
			// 个人房间只能自己进：通知房间里有未读计数等私有事件，
			// 不做这个校验任何连接都能旁听别人的通知。
			if req.UserID != client.UserID {
				sendWsError(client, "无权加入他人的通知房间")
				return
			}
			c.WsServer.JoinRoom(client, cons.UserRoom(req.UserID))

		case cons.EventJoinRecipeRoom:
			var req message.JoinRecipeRoomReq
			if err := json.Unmarshal(msg, &req); err != nil || req.RecipeID == 0 {
				return
			}
			// 菜谱房间是公开广播组，进详情页就能进
			c.WsServer.JoinRoom(client, cons.RecipeRoom(req.RecipeID))

		case cons.EventLeaveRecipeRoom:
			var req message.JoinRecipeRoomReq
			if err := json.Unmarshal(msg, &req); err != nil || req.RecipeID == 0 {
				return
			}
			c.WsServer.LeaveRoom(client, cons.RecipeRoom(req.RecipeID))

		case cons.EventLikeRecipe:
			var req message.LikeRecipeReq
			if err := json.Unmarshal(msg, &req); err != nil || req.RecipeID == 0 {
				return
			}
			// 身份取连接认证结果，不信 payload 里的 user_id
			if _, err := c.LikeService.Toggle(client.UserID, req.RecipeID, req.IsLiked); err != nil {
				log.Printf("like toggle failed: %v", err)
				sendWsError(client, "点赞失败")
			}

		case cons.EventNewComment:
			var req message.NewCommentReq
			if err := json.Unmarshal(msg, &req); err != nil || req.RecipeID == 0 {
				return
			}
			if _, err := c.CommentService.AddComment(client.UserID, req.RecipeID, req.CommentText); err != nil {
				log.Printf("add comment failed: %v", err)
				sendWsError(client, err.Error())
			}

		case cons.EventRateRecipe:
			var req message.RateRecipeReq
			if err := json.Unmarshal(msg, &req); err != nil || req.RecipeID == 0 {
				return
			}
			if _, _, err := c.RatingService.Rate(client.UserID, req.RecipeID, req.Rating); err != nil {
				log.Printf("rate recipe failed: %v", err)
				sendWsError(client, err.Error())
			}

		default:
			log.Printf("unknown ws event from user %d", client.UserID)
		}
	}
}

// sendWsError 给发起连接回一条 error 事件（best-effort）。
func sendWsError(client *Client, msg string) {
	if client == nil {
		return
	}
	b, _ := json.Marshal(message.ErrorEvent{Type: cons.EventError, Message: msg})
	select {
	case client.send <- b:
	default:
	}
}
