package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestTokenService_StoreAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTokenService(rdb)
	ctx := context.Background()

	token, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := svc.StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	uid, err := svc.GetUserIDByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected uid 42, got %d", uid)
	}
}

func TestTokenService_RevokeToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTokenService(rdb)
	ctx := context.Background()

	token, _ := svc.GenerateToken()
	if err := svc.StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}
	if err := svc.RevokeToken(ctx, token); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if _, err := svc.GetUserIDByToken(ctx, token); err == nil {
		t.Fatalf("expected error after revoke")
	}
}

func TestTokenService_RevokeAllTokensByUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTokenService(rdb)
	ctx := context.Background()

	// 多端登录后全端注销
	t1, _ := svc.GenerateToken()
	t2, _ := svc.GenerateToken()
	_ = svc.StoreToken(ctx, t1, 42, time.Hour)
	_ = svc.StoreToken(ctx, t2, 42, time.Hour)

	if err := svc.RevokeAllTokensByUser(ctx, 42); err != nil {
		t.Fatalf("RevokeAllTokensByUser: %v", err)
	}
	if _, err := svc.GetUserIDByToken(ctx, t1); err == nil {
		t.Fatalf("expected t1 revoked")
	}
	if _, err := svc.GetUserIDByToken(ctx, t2); err == nil {
		t.Fatalf("expected t2 revoked")
	}
}
