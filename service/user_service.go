package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GioMjds/Savoury-sub000/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	*Service
	tokenService  *TokenService
	loginTokenTTL time.Duration
}

func NewUserService(s *Service) *UserService {
	return &UserService{
		Service:       s,
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: 7 * 24 * time.Hour,
	}
}

// --- types ---

type UserDTO struct {
	ID          uint64     `json:"id"`
	UID         string     `json:"uid"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	Email       string     `json:"email"`
	Bio         string     `json:"bio"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RegisterReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginReq struct {
	Account  string `json:"account"` // username/email
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		UID:         u.UID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Avatar:      u.Avatar,
		Email:       u.Email,
		Bio:         u.Bio,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Register 注册：用户名/邮箱唯一，密码 bcrypt 落库。
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("用户名和密码不能为空")
	}
	if len(req.Password) < 6 {
		return nil, errors.New("密码至少 6 位")
	}

	var cnt int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ? OR (email = ? AND email <> '')", req.Username, req.Email).
		Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, errors.New("用户名或邮箱已被占用")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}
	u := &models.User{
		UID:      uuid.New().String(),
		Username: req.Username,
		Nickname: nickname,
		Password: string(hash),
		Email:    req.Email,
	}
	if err := s.DB.Create(u).Error; err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// Login 登录：账号支持用户名或邮箱，成功后签发 Redis token。
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" || req.Password == "" {
		return nil, errors.New("账号和密码不能为空")
	}

	var u models.User
	err := s.DB.Where("username = ? OR email = ?", account, strings.ToLower(account)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("密码错误")
	}

	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, u.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}

	now := time.Now()
	_ = s.DB.Model(&u).Update("last_login_at", &now).Error

	return &LoginResp{Token: token, User: *toUserDTO(&u)}, nil
}

// GetUser 按内部 ID 查用户。
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	var u models.User
	if err := s.DB.First(&u, userID).Error; err != nil {
		return nil, err
	}
	return toUserDTO(&u), nil
}

// GetUserByUID 按对外 UID 查用户（profile 页）。
func (s *UserService) GetUserByUID(uid string) (*UserDTO, error) {
	var u models.User
	if err := s.DB.Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return toUserDTO(&u), nil
}
