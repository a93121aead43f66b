package savoury

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

// Client 代表某个具体 websocket 连接；同一用户多设备会有多个 Client。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// UserID 连接的认证身份（建连时由 token 换出，不信客户端自报）
	UserID uint64

	Nickname string

	Avatar string
}

// WsServer WS 中心：连接表 + 房间成员表。
// 房间是纯内存的广播组，key 形如 user:<id> / recipe:<id>；
// 连接断开时必须从所有房间摘干净，不允许留悬挂引用。
type WsServer struct {
	clients map[*Client]bool

	// 用户ID -> 该用户所有活跃连接（支持多设备）
	userClients map[uint64][]*Client

	// 房间成员表 + 反向表（反向表用于断连时 O(已加入房间数) 清理）
	rooms       map[string]map[*Client]bool
	clientRooms map[*Client]map[string]struct{}

	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// 回调处理上行消息
	onMessage func(client *Client, msg []byte)
}

func NewWsServer() *WsServer {
	return &WsServer{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]struct{}),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClientLocked(client)
			h.mu.Unlock()
		}
	}
}

// removeClientLocked 摘除连接：连接表、用户表、全部房间。调用方持有 h.mu。
func (h *WsServer) removeClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if userConns, exists := h.userClients[client.UserID]; exists {
		for i, conn := range userConns {
			if conn == client {
				h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
				break
			}
		}
		if len(h.userClients[client.UserID]) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	// 从所有已加入的房间里摘掉，空房间直接回收
	for roomKey := range h.clientRooms[client] {
		if members, ok := h.rooms[roomKey]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomKey)
			}
		}
	}
	delete(h.clientRooms, client)
}

// JoinRoom 幂等加入房间。房间不存在时按需创建，不做容量限制。
func (h *WsServer) JoinRoom(client *Client, roomKey string) {
	if client == nil || roomKey == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		// 已断开的连接不再入房
		return
	}
	if h.rooms[roomKey] == nil {
		h.rooms[roomKey] = make(map[*Client]bool)
	}
	h.rooms[roomKey][client] = true
	if h.clientRooms[client] == nil {
		h.clientRooms[client] = make(map[string]struct{})
	}
	h.clientRooms[client][roomKey] = struct{}{}
}

// LeaveRoom 幂等离开房间，不在房间里时 no-op。
func (h *WsServer) LeaveRoom(client *Client, roomKey string) {
	if client == nil || roomKey == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomKey]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	if set, ok := h.clientRooms[client]; ok {
		delete(set, roomKey)
		if len(set) == 0 {
			delete(h.clientRooms, client)
		}
	}
}

// BroadcastToRoom 把消息投给房间当前全部成员。
// - 整个发送循环持有读锁：close(send) 在 removeClientLocked 里发生且需要写锁，
//   所以发送窗口内不可能有成员被摘除（往已关闭 channel 发送会 panic，select 也拦不住）
// - 单个成员缓冲满直接丢，不阻塞也不影响其他成员（每成员故障隔离，持锁期间不会卡住）
// - 不重试：广播前已断开的成员自然不在成员表里
func (h *WsServer) BroadcastToRoom(roomKey string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomKey] {
		select {
		case client.send <- msg:
		default:
			// 丢弃避免阻塞
		}
	}
}

// SendToUser 定向发给某用户的全部连接（错误提示等点对点消息用）。
// 与 BroadcastToRoom 同理，持读锁发送，避免和断连清理的 close(send) 竞争。
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.send <- msg:
		default:
			// 丢弃避免阻塞
		}
	}
}

// RoomSize 房间当前成员数（测试与运维观测用）。
func (h *WsServer) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

// InRoom 连接是否在某房间里。
func (h *WsServer) InRoom(client *Client, roomKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomKey][client]
}

// ClientRoomCount 连接当前加入的房间数（泄漏检查用）。
func (h *WsServer) ClientRoomCount(client *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientRooms[client])
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, msg)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(msg)

			// 一次性发送管道剩余全部的消息，不重新走 msg, ok := <-c.send，提升性能
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump 写入ping失败")
				return
			}
		}
	}
}

// ServeWS 处理ws的请求。userID 必须是上层鉴权后的身份。
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, nickname, avatar string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		UserID:   userID,
		Nickname: nickname,
		Avatar:   avatar,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	// 不要 select{} 永久阻塞 handler；连接生命周期由 readPump/writePump 控制。
}

// registerDirect / unregisterDirect 测试专用：不经过 Run 循环直接改表，
// 让注册/清理行为可以同步断言。
func (h *WsServer) registerDirect(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	h.mu.Unlock()
}

func (h *WsServer) unregisterDirect(client *Client) {
	h.mu.Lock()
	h.removeClientLocked(client)
	h.mu.Unlock()
}
