package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GioMjds/Savoury-sub000/cons"
	"github.com/GioMjds/Savoury-sub000/message"
	"github.com/GioMjds/Savoury-sub000/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// NotificationService 统一处理：点赞/评论/评分产生的通知
// 约定：先落库，再尽力通过房间推送；离线/新设备通过 HTTP 拉取。
// 推送失败不回滚主操作（通知永远是 best-effort 副作用）。
type NotificationService struct {
	*Service
}

func NewNotificationService(s *Service) *NotificationService {
	return &NotificationService{Service: s}
}

// likeDedupKey like 是 toggle 语义，同一 (recipient, sender, recipe) 三元组最多一条通知，
// 幂等键固定可推导；配合 DedupKey 唯一索引，重复的 like_applied 在 DB 层被吃掉。
func likeDedupKey(recipientID, senderID, recipeID uint64) string {
	return fmt.Sprintf("like:%d:%d:%d", recipientID, senderID, recipeID)
}

// snapshot 通知里冗余的展示快照，发出时定格，之后 sender 改昵称不回填。
type snapshot struct {
	Sender message.SenderBrief `json:"sender"`
	Recipe message.RecipeBrief `json:"recipe"`
}

// lookup 拉取通知需要的菜谱与触发者信息。
// 任一查不到整个操作中止，不产生部分写入；调用方记日志即可，主操作照常成功。
func (s *NotificationService) lookup(recipeID, senderID uint64) (*models.Recipe, *models.User, error) {
	var recipe models.Recipe
	if err := s.DB.First(&recipe, recipeID).Error; err != nil {
		return nil, nil, fmt.Errorf("recipe %d not found: %w", recipeID, err)
	}
	var sender models.User
	if err := s.DB.First(&sender, senderID).Error; err != nil {
		return nil, nil, fmt.Errorf("sender %d not found: %w", senderID, err)
	}
	return &recipe, &sender, nil
}

// LikeApplied 点赞 ABSENT -> PRESENT：
// - 自己赞自己的菜谱不通知
// - DedupKey + OnConflict DoNothing：重复事件（并发/重投）不会插出第二行，也不重复推送
func (s *NotificationService) LikeApplied(recipeID, senderID uint64) error {
	recipe, sender, err := s.lookup(recipeID, senderID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == senderID {
		// 自我抑制：不落库也不推送
		return nil
	}

	msg := fmt.Sprintf("%s 点赞了你的菜谱《%s》", sender.Nickname, recipe.Title)
	n, created, err := s.create(recipe.AuthorID, sender, recipe, models.NotifyTypeLike, msg,
		likeDedupKey(recipe.AuthorID, senderID, recipeID))
	if err != nil {
		return err
	}
	if !created {
		// PRESENT 状态下重复 like_applied：no-op
		return nil
	}
	s.pushNew(n, sender, recipe)
	return nil
}

// LikeRemoved 点赞 PRESENT -> ABSENT：
// 按三元组物理删掉全部 like 通知（Notification 无软删字段，删行即释放 DedupKey，
// 之后重新点赞能正常插入并推送；也顺手清掉历史脏数据里可能的重复行），再推撤销事件。
func (s *NotificationService) LikeRemoved(recipeID, senderID uint64) error {
	recipe, _, err := s.lookup(recipeID, senderID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == senderID {
		return nil
	}

	res := s.DB.Where("recipient_id = ? AND sender_id = ? AND recipe_id = ? AND type = ?",
		recipe.AuthorID, senderID, recipeID, models.NotifyTypeLike).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 本来就没有通知（从未点过 / 已删），不需要推撤销
		return nil
	}

	evt := message.NotificationRemovedEvent{
		Type:        cons.EventNotificationRemoved,
		NotifyType:  models.NotifyTypeLike,
		RecipeID:    recipeID,
		SenderID:    senderID,
		RecipientID: recipe.AuthorID,
	}
	s.push(cons.UserRoom(recipe.AuthorID), evt)
	return nil
}

// CommentAdded 评论是累加语义：每条评论一条通知，只做自我抑制。
func (s *NotificationService) CommentAdded(recipeID, senderID uint64, commentText string) error {
	recipe, sender, err := s.lookup(recipeID, senderID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == senderID {
		return nil
	}

	msg := fmt.Sprintf("%s 评论了你的菜谱《%s》", sender.Nickname, recipe.Title)
	n, created, err := s.create(recipe.AuthorID, sender, recipe, models.NotifyTypeComment, msg,
		uuid.New().String())
	if err != nil {
		return err
	}
	if created {
		s.pushNew(n, sender, recipe)
	}
	return nil
}

// RatingUpdated 评分同样累加：每次评分（含覆盖）都通知作者。
func (s *NotificationService) RatingUpdated(recipeID, senderID uint64, score uint8) error {
	recipe, sender, err := s.lookup(recipeID, senderID)
	if err != nil {
		return err
	}
	if recipe.AuthorID == senderID {
		return nil
	}

	msg := fmt.Sprintf("%s 给你的菜谱《%s》打了 %d 分", sender.Nickname, recipe.Title, score)
	n, created, err := s.create(recipe.AuthorID, sender, recipe, models.NotifyTypeRating, msg,
		uuid.New().String())
	if err != nil {
		return err
	}
	if created {
		s.pushNew(n, sender, recipe)
	}
	return nil
}

// create 落一条通知。created=false 表示 DedupKey 冲突被 DoNothing 吃掉（幂等路径）。
func (s *NotificationService) create(recipientID uint64, sender *models.User, recipe *models.Recipe,
	notifyType, msg, dedupKey string) (*models.Notification, bool, error) {

	snap, err := json.Marshal(snapshot{
		Sender: message.SenderBrief{UserID: sender.ID, Nickname: sender.Nickname, Avatar: sender.Avatar},
		Recipe: message.RecipeBrief{RecipeID: recipe.ID, Title: recipe.Title},
	})
	if err != nil {
		return nil, false, err
	}

	rid := recipe.ID
	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		RecipeID:    &rid,
		Type:        notifyType,
		Message:     msg,
		Payload:     datatypes.JSON(snap),
		DedupKey:    dedupKey,
		CreatedAt:   time.Now(),
	}

	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return n, res.RowsAffected > 0, nil
}

func (s *NotificationService) pushNew(n *models.Notification, sender *models.User, recipe *models.Recipe) {
	evt := message.NewNotificationEvent{
		Type:           cons.EventNewNotification,
		NotificationID: n.ID,
		NotifyType:     n.Type,
		Message:        n.Message,
		IsRead:         n.IsRead,
		RecipientID:    n.RecipientID,
		Sender:         message.SenderBrief{UserID: sender.ID, Nickname: sender.Nickname, Avatar: sender.Avatar},
		Recipe:         &message.RecipeBrief{RecipeID: recipe.ID, Title: recipe.Title},
		CreatedAt:      n.CreatedAt,
	}
	s.push(cons.UserRoom(n.RecipientID), evt)
}

// push 序列化后交给注入的房间广播回调；没配回调（纯 HTTP 部署）就静默跳过。
func (s *NotificationService) push(roomKey string, evt any) {
	if s.RoomNotifier == nil {
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	s.RoomNotifier(roomKey, b)
}

// NotificationDTO HTTP 返回结构
type NotificationDTO struct {
	ID        uint64         `json:"id"`
	Type      string         `json:"type"`
	SenderID  uint64         `json:"sender_id"`
	RecipeID  *uint64        `json:"recipe_id,omitempty"`
	Message   string         `json:"message"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListNotifications 拉取用户通知（按创建时间倒序，page 从 1 开始）
func (s *NotificationService) ListNotifications(userID uint64, page, limit int, unreadOnly bool) ([]NotificationDTO, int64, error) {
	if userID == 0 {
		return nil, 0, errors.New("user_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	q := s.DB.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Notification
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]NotificationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, NotificationDTO{
			ID:        r.ID,
			Type:      r.Type,
			SenderID:  r.SenderID,
			RecipeID:  r.RecipeID,
			Message:   r.Message,
			Payload:   r.Payload,
			IsRead:    r.IsRead,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, total, nil
}

// CountUnread 未读数的权威来源，badge 的周期校准就打这里。
func (s *NotificationService) CountUnread(userID uint64) (int64, error) {
	if userID == 0 {
		return 0, errors.New("user_id is required")
	}
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkReadByIDs 批量标记已读（只允许改自己的）
func (s *NotificationService) MarkReadByIDs(userID uint64, ids []uint64) error {
	if userID == 0 {
		return errors.New("user_id is required")
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(userID uint64) error {
	if userID == 0 {
		return errors.New("user_id is required")
	}
	now := time.Now()
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}
