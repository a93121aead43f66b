package savoury

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/GioMjds/Savoury-sub000/cons"
)

// newTestClient 不带真实 websocket 连接，只用于房间表与投递断言。
func newTestClient(h *WsServer, userID uint64) *Client {
	c := &Client{hub: h, send: make(chan []byte, 8), UserID: userID}
	h.registerDirect(c)
	return c
}

func recvOrEmpty(c *Client) string {
	select {
	case b := <-c.send:
		return string(b)
	default:
		return ""
	}
}

func TestWsServer_JoinRoomIdempotent(t *testing.T) {
	h := NewWsServer()
	c := newTestClient(h, 1)

	room := cons.RecipeRoom(42)
	h.JoinRoom(c, room)
	h.JoinRoom(c, room)

	if got := h.RoomSize(room); got != 1 {
		t.Fatalf("expected room size 1, got %d", got)
	}
	if got := h.ClientRoomCount(c); got != 1 {
		t.Fatalf("expected 1 joined room, got %d", got)
	}
}

func TestWsServer_BroadcastOnlyToMembers(t *testing.T) {
	h := NewWsServer()
	inRoom := newTestClient(h, 1)
	left := newTestClient(h, 2)
	never := newTestClient(h, 3)

	room := cons.RecipeRoom(42)
	h.JoinRoom(inRoom, room)
	h.JoinRoom(left, room)
	h.LeaveRoom(left, room)

	h.BroadcastToRoom(room, []byte("hello"))

	if got := recvOrEmpty(inRoom); got != "hello" {
		t.Fatalf("expected member to receive, got %q", got)
	}
	if got := recvOrEmpty(left); got != "" {
		t.Fatalf("left client must not receive, got %q", got)
	}
	if got := recvOrEmpty(never); got != "" {
		t.Fatalf("non-member must not receive, got %q", got)
	}
}

func TestWsServer_DisconnectCleansAllRooms(t *testing.T) {
	h := NewWsServer()
	c := newTestClient(h, 1)
	other := newTestClient(h, 2)

	h.JoinRoom(c, cons.UserRoom(1))
	h.JoinRoom(c, cons.RecipeRoom(42))
	h.JoinRoom(other, cons.RecipeRoom(42))

	h.unregisterDirect(c)

	// 断开后不允许在任何房间表里留悬挂引用
	if h.InRoom(c, cons.UserRoom(1)) || h.InRoom(c, cons.RecipeRoom(42)) {
		t.Fatalf("disconnected client still in room")
	}
	if got := h.ClientRoomCount(c); got != 0 {
		t.Fatalf("expected 0 rooms after disconnect, got %d", got)
	}
	// 只剩自己的房间整个回收，别人还在的房间保留
	if got := h.RoomSize(cons.UserRoom(1)); got != 0 {
		t.Fatalf("expected user room reclaimed, size %d", got)
	}
	if got := h.RoomSize(cons.RecipeRoom(42)); got != 1 {
		t.Fatalf("expected recipe room to keep other member, size %d", got)
	}

	// 断开的连接不得再入房
	h.JoinRoom(c, cons.RecipeRoom(42))
	if h.InRoom(c, cons.RecipeRoom(42)) {
		t.Fatalf("disconnected client must not rejoin")
	}
}

func TestWsServer_BroadcastDropsOnFullBuffer(t *testing.T) {
	h := NewWsServer()
	slow := &Client{hub: h, send: make(chan []byte, 1), UserID: 1}
	h.registerDirect(slow)
	fast := newTestClient(h, 2)

	room := cons.RecipeRoom(42)
	h.JoinRoom(slow, room)
	h.JoinRoom(fast, room)

	h.BroadcastToRoom(room, []byte("m1"))
	h.BroadcastToRoom(room, []byte("m2"))

	// 慢连接缓冲满只丢自己的，不影响快连接
	if got := recvOrEmpty(slow); got != "m1" {
		t.Fatalf("expected slow client to keep first message, got %q", got)
	}
	if got := recvOrEmpty(slow); got != "" {
		t.Fatalf("expected overflow dropped, got %q", got)
	}
	if got := recvOrEmpty(fast); got != "m1" {
		t.Fatalf("fast client missing m1, got %q", got)
	}
	if got := recvOrEmpty(fast); got != "m2" {
		t.Fatalf("fast client missing m2, got %q", got)
	}
}

func TestWsServer_BroadcastDuringDisconnect(t *testing.T) {
	h := NewWsServer()
	room := cons.RecipeRoom(42)

	clients := make([]*Client, 0, 128)
	for i := 0; i < 128; i++ {
		c := newTestClient(h, uint64(i+1))
		h.JoinRoom(c, room)
		clients = append(clients, c)
	}

	// 广播和断连清理并发跑：清理会 close(send)，
	// 广播绝不能往已关闭的 channel 发送（进程级 panic）
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			h.BroadcastToRoom(room, []byte("x"))
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			h.unregisterDirect(c)
		}
	}()
	wg.Wait()

	if got := h.RoomSize(room); got != 0 {
		t.Fatalf("expected empty room after all disconnects, size %d", got)
	}
}

func TestEngine_JoinUserRoomRequiresOwnIdentity(t *testing.T) {
	h := NewWsServer()
	e := &Engine{WsServer: h}
	e.bindWsHandlersOnMessage()

	c := newTestClient(h, 7)

	// 冒领别人的通知房间：拒绝并回 error 事件
	h.handleMessage(c, []byte(`{"type":"join-user-room","user_id":8}`))
	if h.InRoom(c, cons.UserRoom(8)) {
		t.Fatalf("client must not join another user's room")
	}
	got := recvOrEmpty(c)
	var evt struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(got), &evt); err != nil || evt.Type != cons.EventError {
		t.Fatalf("expected error event, got %q", got)
	}

	// 自己的房间正常进
	h.handleMessage(c, []byte(`{"type":"join-user-room","user_id":7}`))
	if !h.InRoom(c, cons.UserRoom(7)) {
		t.Fatalf("client should join own room")
	}
	if got := recvOrEmpty(c); got != "" {
		t.Fatalf("unexpected message after valid join: %q", got)
	}
}

func TestEngine_JoinAndLeaveRecipeRoomEvents(t *testing.T) {
	h := NewWsServer()
	e := &Engine{WsServer: h}
	e.bindWsHandlersOnMessage()

	c := newTestClient(h, 7)

	h.handleMessage(c, []byte(`{"type":"join-recipe-room","recipe_id":42}`))
	if !h.InRoom(c, cons.RecipeRoom(42)) {
		t.Fatalf("expected join recipe room")
	}

	h.handleMessage(c, []byte(`{"type":"leave-recipe-room","recipe_id":42}`))
	if h.InRoom(c, cons.RecipeRoom(42)) {
		t.Fatalf("expected leave recipe room")
	}

	// 非法 payload 忽略
	h.handleMessage(c, []byte(`{"type":"join-recipe-room"}`))
	if got := h.ClientRoomCount(c); got != 0 {
		t.Fatalf("expected no rooms, got %d", got)
	}
	if got := recvOrEmpty(c); strings.Contains(got, "error") {
		t.Fatalf("malformed join must be silent, got %q", got)
	}
}
