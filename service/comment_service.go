package service

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/GioMjds/Savoury-sub000/cons"
	"github.com/GioMjds/Savoury-sub000/message"
	"github.com/GioMjds/Savoury-sub000/models"
	"gorm.io/gorm"
)

type CommentService struct{ *Service }

func NewCommentService(s *Service) *CommentService { return &CommentService{Service: s} }

type CommentDTO struct {
	ID        uint64              `json:"id"`
	RecipeID  uint64              `json:"recipe_id"`
	Content   string              `json:"content"`
	User      message.SenderBrief `json:"user"`
	CreatedAt time.Time           `json:"created_at"`
}

// AddComment 发表评论：
// 1) 事务内落评论 + 菜谱计数
// 2) comment-added 无条件广播到 recipe:<id> 房间（包括评论者自己的其他设备）
// 3) 作者通知走 reconciliation（自评自的菜谱不通知，但第 2 步照常广播）
func (s *CommentService) AddComment(userID, recipeID uint64, content string) (*CommentDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("评论内容不能为空")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	var recipe models.Recipe
	if err := s.DB.First(&recipe, recipeID).Error; err != nil {
		return nil, err
	}

	c := models.RecipeComment{RecipeID: recipeID, UserID: userID, Content: content}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return tx.Model(&models.Recipe{}).Where("id = ?", recipeID).
			UpdateColumn("comments_cnt", gorm.Expr("comments_cnt + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	dto := &CommentDTO{
		ID:       c.ID,
		RecipeID: recipeID,
		Content:  c.Content,
		User: message.SenderBrief{
			UserID:   user.ID,
			Nickname: user.Nickname,
			Avatar:   user.Avatar,
		},
		CreatedAt: c.CreatedAt,
	}

	// 房间广播：菜谱详情页里的所有人实时看到新评论
	s.broadcastCommentAdded(dto)

	// 作者通知（best-effort）
	if s.Notify != nil {
		if err := s.Notify.CommentAdded(recipeID, userID, content); err != nil {
			log.Printf("comment notify failed: %v", err)
		}
	}

	return dto, nil
}

func (s *CommentService) broadcastCommentAdded(dto *CommentDTO) {
	if s.RoomNotifier == nil {
		return
	}
	var evt message.CommentAddedEvent
	evt.Type = cons.EventCommentAdded
	evt.Comment.CommentID = dto.ID
	evt.Comment.CommentText = dto.Content
	evt.Comment.CreatedAt = dto.CreatedAt
	evt.Comment.User = dto.User

	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	s.RoomNotifier(cons.RecipeRoom(dto.RecipeID), b)
}

// ListComments 评论列表（时间升序）
func (s *CommentService) ListComments(recipeID uint64, limit, offset int) ([]CommentDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.RecipeComment
	if err := s.DB.Preload("User").Where("recipe_id = ?", recipeID).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]CommentDTO, len(rows))
	for i, c := range rows {
		out[i] = CommentDTO{
			ID:       c.ID,
			RecipeID: c.RecipeID,
			Content:  c.Content,
			User: message.SenderBrief{
				UserID:   c.User.ID,
				Nickname: c.User.Nickname,
				Avatar:   c.User.Avatar,
			},
			CreatedAt: c.CreatedAt,
		}
	}
	return out, nil
}
