package service

import (
	"errors"
	"strings"
	"time"

	"github.com/GioMjds/Savoury-sub000/models"
	"github.com/google/uuid"
)

type RecipeService struct{ *Service }

func NewRecipeService(s *Service) *RecipeService { return &RecipeService{Service: s} }

// CreateRecipeReq 创建菜谱请求
type CreateRecipeReq struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	ImageURL     string `json:"image_url"`
}

type RecipeDTO struct {
	ID           uint64    `json:"id"`
	UID          string    `json:"uid"`
	AuthorID     uint64    `json:"author_id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Ingredients  string    `json:"ingredients"`
	Instructions string    `json:"instructions"`
	ImageURL     string    `json:"image_url"`
	LikesCnt     uint64    `json:"likes_cnt"`
	CommentsCnt  uint64    `json:"comments_cnt"`
	RatingAvg    float64   `json:"rating_avg"`
	RatingCnt    uint64    `json:"rating_cnt"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRecipeDTO(r models.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:           r.ID,
		UID:          r.UID,
		AuthorID:     r.AuthorID,
		Title:        r.Title,
		Summary:      r.Summary,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		ImageURL:     r.ImageURL,
		LikesCnt:     r.LikesCnt,
		CommentsCnt:  r.CommentsCnt,
		RatingAvg:    r.RatingAvg,
		RatingCnt:    r.RatingCnt,
		CreatedAt:    r.CreatedAt,
	}
}

// CreateRecipe 发布菜谱
func (s *RecipeService) CreateRecipe(authorID uint64, req CreateRecipeReq) (RecipeDTO, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return RecipeDTO{}, errors.New("标题不能为空")
	}
	if strings.TrimSpace(req.Ingredients) == "" {
		return RecipeDTO{}, errors.New("食材不能为空")
	}

	r := models.Recipe{
		UID:          uuid.New().String(),
		AuthorID:     authorID,
		Title:        req.Title,
		Summary:      req.Summary,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
	}
	if err := s.DB.Create(&r).Error; err != nil {
		return RecipeDTO{}, err
	}
	return toRecipeDTO(r), nil
}

// GetRecipe 按内部 ID 查菜谱。
func (s *RecipeService) GetRecipe(recipeID uint64) (*RecipeDTO, error) {
	var r models.Recipe
	if err := s.DB.First(&r, recipeID).Error; err != nil {
		return nil, err
	}
	dto := toRecipeDTO(r)
	return &dto, nil
}

// ListFeed 首页 feed：按时间倒序分页，计数列直接读冗余字段。
func (s *RecipeService) ListFeed(limit, offset int) ([]RecipeDTO, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	var rows []models.Recipe
	if err := s.DB.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]RecipeDTO, len(rows))
	for i, r := range rows {
		out[i] = toRecipeDTO(r)
	}
	return out, nil
}

// ListByAuthor 某个用户的菜谱（profile 页）。
func (s *RecipeService) ListByAuthor(authorID uint64, limit, offset int) ([]RecipeDTO, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.Recipe
	if err := s.DB.Where("author_id = ?", authorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]RecipeDTO, len(rows))
	for i, r := range rows {
		out[i] = toRecipeDTO(r)
	}
	return out, nil
}
