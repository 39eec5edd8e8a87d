package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/cartcore-backend/internal/app/service"
	"github.com/ikkim/cartcore-backend/pkg/logger"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10

	sendBufferSize = 64

	MessageTypeStock       = "stock"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type       string `json:"type"` // subscribe, unsubscribe
	ProductIDs []uint `json:"product_ids"`
}

// StockMessage 재고 변경 알림
type StockMessage struct {
	Type   string               `json:"type"`
	Levels []service.StockLevel `json:"levels"`
}

// Client WebSocket 클라이언트
type Client struct {
	Hub  *Hub
	Conn *Conn
	Send chan []byte

	// 구독 중인 상품 IDs (비어 있으면 전체)
	products map[uint]bool
	mu       sync.RWMutex

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, sendBufferSize),
		products: make(map[uint]bool),
	}
}

// Subscribe limits the client to the given products.
func (c *Client) Subscribe(ids ...uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.products[id] = true
	}
}

func (c *Client) Unsubscribe(ids ...uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.products, id)
	}
}

// filter returns the levels this client wants, or nil.
func (c *Client) filter(levels []service.StockLevel) []service.StockLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.products) == 0 {
		return levels
	}
	var out []service.StockLevel
	for _, level := range levels {
		if c.products[level.ProductID] {
			out = append(out, level)
		}
	}
	return out
}

// Hub WebSocket 연결 관리자. Purchases publish committed stock levels here.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []service.StockLevel
	done       chan struct{} // Run 종료 시 닫힘

	mu sync.RWMutex
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []service.StockLevel, 1024),
		done:       make(chan struct{}),
	}
}

// Run 은 ctx 가 끝날 때까지 등록/해제/브로드캐스트를 처리한다
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.drainRegistrations()
			logger.Info("WebSocket hub stopped", nil)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case levels := <-h.broadcast:
			h.deliver(levels)
		}
	}
}

// drainRegistrations closes clients still queued for registration at stop.
func (h *Hub) drainRegistrations() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	remaining := len(h.clients)
	h.mu.Unlock()
	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"remaining_clients": remaining,
	})
}

func (h *Hub) deliver(levels []service.StockLevel) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		wanted := client.filter(levels)
		if len(wanted) == 0 {
			continue
		}
		data, err := json.Marshal(StockMessage{Type: MessageTypeStock, Levels: wanted})
		if err != nil {
			logger.Error("Failed to marshal stock message", err, nil)
			continue
		}
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Send 채널이 막힌 클라이언트는 연결 해제
	for _, client := range slow {
		logger.Warn("Client send buffer full, disconnecting", nil)
		h.remove(client)
	}
}

// PublishStock queues committed stock levels for every connected client.
func (h *Hub) PublishStock(_ context.Context, levels []service.StockLevel) {
	if len(levels) == 0 {
		return
	}
	select {
	case h.broadcast <- levels:
	default:
		// 메시지 손실 허용 (구매 흐름에 영향 없음)
		logger.Warn("Broadcast channel full, stock update dropped", map[string]interface{}{
			"levels": len(levels),
		})
	}
}

// Register 클라이언트 등록. 중지된 hub 는 Send 를 바로 닫는다
func (h *Hub) Register(client *Client) {
	if h.stopped() {
		close(client.Send)
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 클라이언트 등록 해제. 중지 후에는 블록하지 않는다
func (h *Hub) Unregister(client *Client) {
	if h.stopped() {
		h.remove(client)
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
		h.remove(client)
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"count": count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe:
		client.Subscribe(msg.ProductIDs...)
	case MessageTypeUnsubscribe:
		client.Unsubscribe(msg.ProductIDs...)
	default:
		logger.Debug("Ignoring unknown client message", map[string]interface{}{
			"type": msg.Type,
		})
	}
}

var _ service.StockPublisher = (*Hub)(nil)
