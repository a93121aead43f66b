package savoury

import (
	"net/http"

	"github.com/GioMjds/Savoury-sub000/middleware"
	"github.com/GioMjds/Savoury-sub000/response"
	"github.com/GioMjds/Savoury-sub000/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户/鉴权相关接口 --------------------

// GinHandleRegister 注册
// @Summary 用户注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "请求参数"
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Router /auth/register [post]
func (c *Engine) GinHandleRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	user, err := c.UserService.Register(req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// GinHandleLogin 登录
// @Summary 用户登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "请求参数"
// @Success 200 {object} response.Response{data=service.LoginResp}
// @Router /auth/login [post]
func (c *Engine) GinHandleLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleLogout 登出（注销当前 token）
// @Summary 登出
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /auth/logout [post]
func (c *Engine) GinHandleLogout(ctx *gin.Context) {
	tokenAny, _ := ctx.Get(middleware.ContextTokenKey)
	token, _ := tokenAny.(string)
	if err := c.AuthService.RevokeToken(ctx.Request.Context(), token); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMe 当前用户信息
// @Summary 当前用户信息
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO}
// @Security BearerAuth
// @Router /user/me [get]
func (c *Engine) GinHandleMe(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetUser(uid)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, "用户不存在"))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(user))
}

// currentUserID 从 gin context 取鉴权后的 userID，缺失时直接写 401。
func currentUserID(ctx *gin.Context) (uint64, bool) {
	uidAny, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	uid, ok := uidAny.(uint64)
	if !ok || uid == 0 {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id invalid"))
		return 0, false
	}
	return uid, true
}

// RegisterGinRoutes 一把挂上全部内置路由（也可以自己按需挑 handler 挂）。
func (c *Engine) RegisterGinRoutes(r *gin.Engine, basePath string) {
	if basePath == "" {
		basePath = "/api/v1"
	}
	api := r.Group(basePath)

	api.POST("/auth/register", c.GinHandleRegister)
	api.POST("/auth/login", c.GinHandleLogin)

	auth := api.Group("")
	auth.Use(c.GinAuthMiddleware(nil))
	{
		auth.POST("/auth/logout", c.GinHandleLogout)
		auth.GET("/user/me", c.GinHandleMe)

		auth.POST("/recipe", c.GinHandleCreateRecipe)
		auth.GET("/recipe/feed", c.GinHandleFeed)
		auth.GET("/recipe/:id", c.GinHandleGetRecipe)
		auth.GET("/recipe/:id/comments", c.GinHandleListComments)
		auth.POST("/recipe/:id/like", c.GinHandleLikeRecipe)
		auth.POST("/recipe/:id/comment", c.GinHandleAddComment)
		auth.POST("/recipe/:id/rating", c.GinHandleRateRecipe)

		auth.GET("/notification/list", c.GinHandleListNotifications)
		auth.GET("/notification/unread_count", c.GinHandleUnreadCount)
		auth.POST("/notification/read", c.GinHandleMarkNotificationsRead)
		auth.POST("/notification/read_all", c.GinHandleMarkAllNotificationsRead)
	}

	// WS 升级（token 走 query）
	r.GET("/ws", func(ctx *gin.Context) {
		c.ServeWS(ctx.Writer, ctx.Request)
	})
}
