package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "sv_"
)

// User 用户表
type User struct {
	ID          uint64     `gorm:"primarykey"`
	UID         string     `gorm:"size:36;uniqueIndex;not null"`      // 对外用户 ID
	Username    string     `gorm:"size:50;uniqueIndex;not null"`      // 用户名
	Nickname    string     `gorm:"size:100;not null"`                 // 昵称
	Password    string     `gorm:"size:255;not null"`                 // 密码
	Avatar      string     `gorm:"size:500"`                          // 头像
	Email       string     `gorm:"size:100;uniqueIndex;default:null"` // 邮箱
	Bio         string     `gorm:"size:255"`                          // 个人简介
	LastLoginAt *time.Time // 最后登录时间
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Recipes []Recipe `gorm:"foreignKey:AuthorID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// Recipe 菜谱表
type Recipe struct {
	ID           uint64 `gorm:"primarykey"`
	UID          string `gorm:"size:36;uniqueIndex;not null"` // 对外菜谱 ID
	AuthorID     uint64 `gorm:"index;not null"`               // 作者 ID
	Title        string `gorm:"size:200;not null"`            // 标题
	Summary      string `gorm:"size:500"`                     // 简介
	Ingredients  string `gorm:"type:text"`                    // 食材（每行一条）
	Instructions string `gorm:"type:text"`                    // 做法步骤
	ImageURL     string `gorm:"size:1000"`                    // 封面图

	// 冗余计数/均分：写路径维护，feed 读路径直接取，避免每次聚合
	LikesCnt    uint64  `gorm:"default:0"` // 点赞数量
	CommentsCnt uint64  `gorm:"default:0"` // 评论数量
	RatingAvg   float64 `gorm:"default:0"` // 平均评分
	RatingCnt   uint64  `gorm:"default:0"` // 评分人数

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Author   User            `gorm:"foreignKey:AuthorID"`
	Comments []RecipeComment `gorm:"foreignKey:RecipeID"`
	Ratings  []RecipeRating  `gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string {
	return prefix + "recipe"
}

// RecipeLike 点赞表（toggle 语义：行存在即已赞）
type RecipeLike struct {
	ID        uint64 `gorm:"primarykey"`
	RecipeID  uint64 `gorm:"index:idx_recipe_user_like,unique;not null"` // 菜谱 ID
	UserID    uint64 `gorm:"index:idx_recipe_user_like,unique;not null"` // 点赞用户 ID
	CreatedAt time.Time

	// 关联关系
	Recipe Recipe `gorm:"foreignKey:RecipeID"`
	User   User   `gorm:"foreignKey:UserID"`
}

func (RecipeLike) TableName() string {
	return prefix + "recipe_like"
}

// RecipeComment 评论表
type RecipeComment struct {
	ID        uint64 `gorm:"primarykey"`
	RecipeID  uint64 `gorm:"index;not null"`     // 菜谱 ID
	UserID    uint64 `gorm:"index;not null"`     // 评论用户 ID
	Content   string `gorm:"type:text;not null"` // 评论内容
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Recipe Recipe `gorm:"foreignKey:RecipeID"`
	User   User   `gorm:"foreignKey:UserID"`
}

func (RecipeComment) TableName() string {
	return prefix + "recipe_comment"
}

// RecipeRating 评分表（每人每菜谱一条，重复评分走 upsert 覆盖）
type RecipeRating struct {
	ID        uint64 `gorm:"primarykey"`
	RecipeID  uint64 `gorm:"index:idx_recipe_user_rating,unique;not null"` // 菜谱 ID
	UserID    uint64 `gorm:"index:idx_recipe_user_rating,unique;not null"` // 评分用户 ID
	Score     uint8  `gorm:"type:tinyint;not null"`                        // 1-5 分
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联关系
	Recipe Recipe `gorm:"foreignKey:RecipeID"`
	User   User   `gorm:"foreignKey:UserID"`
}

func (RecipeRating) TableName() string {
	return prefix + "recipe_rating"
}

// 通知类型
const (
	NotifyTypeLike    = "like"
	NotifyTypeComment = "comment"
	NotifyTypeRating  = "rating"
	NotifyTypeFollow  = "follow"
)

// Notification 通知表
// DedupKey 是幂等的关键：
// - like 类型固定为 like:<recipient>:<sender>:<recipe>，配合唯一索引 + OnConflict DoNothing，
//   并发重复的 like_applied 不会插出第二行（toggle 语义下同一三元组最多一条）。
// - comment/rating 是累加语义，DedupKey 直接用 uuid，不会命中冲突。
// 注意：四列联合唯一索引做不到这件事（会把累加类型也变成去重），所以用 DedupKey 单列。
// 这张表不做软删：取消点赞必须物理删行，DedupKey 随行释放，
// 重新点赞才能再插入并推送；软删的死行会把唯一键永久占住。
type Notification struct {
	ID          uint64         `gorm:"primarykey"`
	RecipientID uint64         `gorm:"index:idx_recipient_read,priority:1;not null"` // 接收者 ID
	SenderID    uint64         `gorm:"index;not null"`                               // 触发者 ID
	RecipeID    *uint64        `gorm:"index"`                                        // 关联菜谱 ID（follow 类通知为空）
	Type        string         `gorm:"size:16;index;not null"`                       // like/comment/rating/follow
	Message     string         `gorm:"size:500;not null"`                            // 渲染好的提示文案
	Payload     datatypes.JSON `gorm:"type:json"`                                    // 展示快照（sender 昵称头像、菜谱标题等）
	DedupKey    string         `gorm:"size:128;uniqueIndex;not null"`                // 幂等键
	IsRead      bool           `gorm:"default:false;index:idx_recipient_read,priority:2"`
	ReadAt      *time.Time
	CreatedAt   time.Time `gorm:"index"`

	// 关联关系
	Recipient User    `gorm:"foreignKey:RecipientID"`
	Sender    User    `gorm:"foreignKey:SenderID"`
	Recipe    *Recipe `gorm:"foreignKey:RecipeID"`
}

func (Notification) TableName() string {
	return prefix + "notification"
}
