package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
)

// confirmMessage 新连接的确认消息（只发给刚加入的连接）
type confirmMessage struct {
	Message string `json:"message"`
}

// Hub 实时推送服务
// 维护当前在线连接集合，把每条成功入库的遥测数据广播给所有连接。
// 不保留历史、不补发：广播时不在线的连接永远收不到该条数据，
// 最新值查询由 LatestStore 以拉取方式补足
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *zap.Logger
}

// NewHub 创建推送服务
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

// Register 连接加入，并向该连接（仅该连接）发送确认消息
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	raw, err := json.Marshal(confirmMessage{Message: "Connected to real-time updates"})
	if err == nil {
		c.enqueue(raw)
	}

	h.logger.Info("WebSocket client connected", zap.Int("clients", h.ClientCount()))
}

// Unregister 连接离开
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	c.close()

	h.logger.Info("WebSocket client disconnected", zap.Int("clients", h.ClientCount()))
}

// Broadcast 向广播时刻在线的所有连接推送一条遥测数据
// 单个连接发送失败（已关闭/缓冲满）只跳过该连接，不影响其他连接
func (h *Hub) Broadcast(data *domain.FlapData) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast payload", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.enqueue(raw) {
			sent++
		}
	}

	h.logger.Debug("Broadcast telemetry event",
		zap.String("patient_id", data.PatientID),
		zap.Int("recipients", sent),
	)
}

// ClientCount 当前在线连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
