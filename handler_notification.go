package savoury

import (
	"net/http"
	"strconv"

	"github.com/GioMjds/Savoury-sub000/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 通知（Notification）相关接口 --------------------

// GinHandleListNotifications 拉取通知
// @Summary 拉取通知
// @Tags 通知
// @Accept json
// @Produce json
// @Param page query int false "页码(默认1)"
// @Param limit query int false "条数(默认20,最大100)"
// @Param unread_only query bool false "只看未读"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.items + data.total"
// @Security BearerAuth
// @Router /notification/list [get]
func (c *Engine) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	unreadOnly := ctx.DefaultQuery("unread_only", "false") == "true"

	items, total, err := c.NotificationService.ListNotifications(uid, page, limit, unreadOnly)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"items": items,
		"total": total,
	}))
}

// GinHandleUnreadCount 未读数（badge 校准的权威接口）
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.count"
// @Security BearerAuth
// @Router /notification/unread_count [get]
func (c *Engine) GinHandleUnreadCount(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	count, err := c.NotificationService.CountUnread(uid)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"count": count}))
}

type MarkNotificationsReadReq struct {
	IDs []uint64 `json:"ids" binding:"required"`
}

// GinHandleMarkNotificationsRead 标记通知已读
// @Summary 标记通知已读
// @Tags 通知
// @Accept json
// @Produce json
// @Param req body MarkNotificationsReadReq true "请求参数"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notification/read [post]
func (c *Engine) GinHandleMarkNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req MarkNotificationsReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.NotificationService.MarkReadByIDs(uid, req.IDs); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMarkAllNotificationsRead 全部标记已读
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notification/read_all [post]
func (c *Engine) GinHandleMarkAllNotificationsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.NotificationService.MarkAllRead(uid); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
