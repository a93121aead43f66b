package service

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/GioMjds/Savoury-sub000/cons"
	"github.com/GioMjds/Savoury-sub000/message"
	"github.com/GioMjds/Savoury-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingService struct{ *Service }

func NewRatingService(s *Service) *RatingService { return &RatingService{Service: s} }

// Rate 评分：(recipe_id, user_id) 唯一，重复评分 upsert 覆盖旧分，
// 然后重算均分/人数写回菜谱冗余列，并把聚合结果广播到菜谱房间。
func (s *RatingService) Rate(userID, recipeID uint64, score uint8) (avg float64, total uint64, err error) {
	if score < 1 || score > 5 {
		return 0, 0, errors.New("评分必须在 1-5 之间")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		r := models.RecipeRating{RecipeID: recipeID, UserID: userID, Score: score}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).Create(&r).Error; err != nil {
			return err
		}

		// 重算聚合（评分表不大，直接 AVG/COUNT）
		var agg struct {
			Avg float64
			Cnt uint64
		}
		if err := tx.Model(&models.RecipeRating{}).
			Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS cnt").
			Where("recipe_id = ?", recipeID).
			Scan(&agg).Error; err != nil {
			return err
		}
		avg, total = agg.Avg, agg.Cnt

		return tx.Model(&models.Recipe{}).Where("id = ?", recipeID).
			UpdateColumns(map[string]any{"rating_avg": avg, "rating_cnt": total}).Error
	})
	if err != nil {
		return 0, 0, err
	}

	// 房间广播聚合结果
	s.broadcastRatingUpdated(recipeID, avg, total)

	// 作者通知（best-effort）
	if s.Notify != nil {
		if err := s.Notify.RatingUpdated(recipeID, userID, score); err != nil {
			log.Printf("rating notify failed: %v", err)
		}
	}

	return avg, total, nil
}

func (s *RatingService) broadcastRatingUpdated(recipeID uint64, avg float64, total uint64) {
	if s.RoomNotifier == nil {
		return
	}
	evt := message.RatingUpdatedEvent{
		Type:          cons.EventRatingUpdated,
		RecipeID:      recipeID,
		AverageRating: avg,
		TotalRatings:  total,
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	s.RoomNotifier(cons.RecipeRoom(recipeID), b)
}

// GetUserRating 当前用户对菜谱的评分（没评过返回 0）。
func (s *RatingService) GetUserRating(userID, recipeID uint64) (uint8, error) {
	var r models.RecipeRating
	err := s.DB.Where("recipe_id = ? AND user_id = ?", recipeID, userID).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return r.Score, nil
}
