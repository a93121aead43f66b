package savoury

import (
	"net/http"
	"strconv"

	"github.com/GioMjds/Savoury-sub000/response"
	"github.com/GioMjds/Savoury-sub000/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 菜谱（Recipe）相关接口 --------------------
// 这些都是薄 CRUD：参数校验 + service 直调。实时副作用全在 service 层。

func recipeIDParam(ctx *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid recipe id"))
		return 0, false
	}
	return id, true
}

// GinHandleCreateRecipe 发布菜谱
// @Summary 发布菜谱
// @Tags 菜谱
// @Accept json
// @Produce json
// @Param req body service.CreateRecipeReq true "请求参数"
// @Success 200 {object} response.Response{data=service.RecipeDTO}
// @Security BearerAuth
// @Router /recipe [post]
func (c *Engine) GinHandleCreateRecipe(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateRecipeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	dto, err := c.RecipeService.CreateRecipe(uid, req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleFeed 菜谱 feed
// @Summary 菜谱 feed
// @Tags 菜谱
// @Produce json
// @Param limit query int false "条数(默认20)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.RecipeDTO}
// @Security BearerAuth
// @Router /recipe/feed [get]
func (c *Engine) GinHandleFeed(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	items, err := c.RecipeService.ListFeed(limit, offset)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(items))
}

// GinHandleGetRecipe 菜谱详情
// @Summary 菜谱详情
// @Tags 菜谱
// @Produce json
// @Param id path int true "菜谱 ID"
// @Success 200 {object} response.Response{data=service.RecipeDTO}
// @Security BearerAuth
// @Router /recipe/{id} [get]
func (c *Engine) GinHandleGetRecipe(ctx *gin.Context) {
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}
	dto, err := c.RecipeService.GetRecipe(id)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeRecipeNotFound, "菜谱不存在"))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleListComments 评论列表
// @Summary 评论列表
// @Tags 菜谱
// @Produce json
// @Param id path int true "菜谱 ID"
// @Param limit query int false "条数(默认50)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]service.CommentDTO}
// @Security BearerAuth
// @Router /recipe/{id}/comments [get]
func (c *Engine) GinHandleListComments(ctx *gin.Context) {
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	items, err := c.CommentService.ListComments(id, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(items))
}

type LikeRecipeHTTPReq struct {
	IsLiked bool `json:"is_liked"`
}

// GinHandleLikeRecipe 点赞 toggle（与 WS like-recipe 等价的 HTTP 入口）
// @Summary 点赞/取消点赞
// @Tags 菜谱
// @Accept json
// @Produce json
// @Param id path int true "菜谱 ID"
// @Param req body LikeRecipeHTTPReq true "请求参数"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.likes_cnt"
// @Security BearerAuth
// @Router /recipe/{id}/like [post]
func (c *Engine) GinHandleLikeRecipe(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	var req LikeRecipeHTTPReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	cnt, err := c.LikeService.Toggle(uid, id, req.IsLiked)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{"likes_cnt": cnt, "is_liked": req.IsLiked}))
}

type AddCommentHTTPReq struct {
	CommentText string `json:"comment_text" binding:"required"`
}

// GinHandleAddComment 发表评论（与 WS new-comment 等价的 HTTP 入口）
// @Summary 发表评论
// @Tags 菜谱
// @Accept json
// @Produce json
// @Param id path int true "菜谱 ID"
// @Param req body AddCommentHTTPReq true "请求参数"
// @Success 200 {object} response.Response{data=service.CommentDTO}
// @Security BearerAuth
// @Router /recipe/{id}/comment [post]
func (c *Engine) GinHandleAddComment(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	var req AddCommentHTTPReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	dto, err := c.CommentService.AddComment(uid, id, req.CommentText)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

type RateRecipeHTTPReq struct {
	Rating uint8 `json:"rating" binding:"required"`
}

// GinHandleRateRecipe 评分（与 WS rate-recipe 等价的 HTTP 入口）
// @Summary 评分
// @Tags 菜谱
// @Accept json
// @Produce json
// @Param id path int true "菜谱 ID"
// @Param req body RateRecipeHTTPReq true "请求参数"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.average_rating + data.total_ratings"
// @Security BearerAuth
// @Router /recipe/{id}/rating [post]
func (c *Engine) GinHandleRateRecipe(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := recipeIDParam(ctx)
	if !ok {
		return
	}

	var req RateRecipeHTTPReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	avg, total, err := c.RatingService.Rate(uid, id, req.Rating)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"average_rating": avg,
		"total_ratings":  total,
	}))
}
