package service

import (
	"log"

	"github.com/GioMjds/Savoury-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeService 点赞 toggle。
// 主操作（like 行 + 计数）在事务里完成；通知是 best-effort 副作用，
// 失败只记日志，不回滚也不报给点赞的人。
type LikeService struct{ *Service }

func NewLikeService(s *Service) *LikeService { return &LikeService{Service: s} }

// Toggle 把点赞状态切到 isLiked。
// like 行上有 (recipe_id, user_id) 唯一索引 + OnConflict DoNothing，
// 重复请求/并发双击不会插出第二行，计数也只在真正插入/删除时动。
func (s *LikeService) Toggle(userID, recipeID uint64, isLiked bool) (likesCnt uint64, err error) {
	var changed bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if isLiked {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.RecipeLike{RecipeID: recipeID, UserID: userID})
			if res.Error != nil {
				return res.Error
			}
			changed = res.RowsAffected > 0
			if changed {
				if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).
					UpdateColumn("likes_cnt", gorm.Expr("likes_cnt + 1")).Error; err != nil {
					return err
				}
			}
		} else {
			res := tx.Where("recipe_id = ? AND user_id = ?", recipeID, userID).
				Delete(&models.RecipeLike{})
			if res.Error != nil {
				return res.Error
			}
			changed = res.RowsAffected > 0
			if changed {
				// GREATEST 防御计数被并发减到负数
				if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).
					UpdateColumn("likes_cnt", gorm.Expr("GREATEST(likes_cnt, 1) - 1")).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// 通知副作用：状态真的翻转了才走 reconciliation
	if changed && s.Notify != nil {
		if isLiked {
			if err := s.Notify.LikeApplied(recipeID, userID); err != nil {
				log.Printf("like notify failed: %v", err)
			}
		} else {
			if err := s.Notify.LikeRemoved(recipeID, userID); err != nil {
				log.Printf("unlike notify failed: %v", err)
			}
		}
	}

	var r models.Recipe
	if err := s.DB.Select("likes_cnt").First(&r, recipeID).Error; err != nil {
		return 0, err
	}
	return r.LikesCnt, nil
}

// HasLiked 查询当前用户是否已赞（详情页初始状态）。
func (s *LikeService) HasLiked(userID, recipeID uint64) (bool, error) {
	var cnt int64
	err := s.DB.Model(&models.RecipeLike{}).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Count(&cnt).Error
	return cnt > 0, err
}
