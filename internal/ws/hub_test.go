package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
)

// newTestClient 不带真实连接的客户端（不启动读写泵，直接从 send 通道取消息）
func newTestClient() *Client {
	return newClient(nil)
}

// drain 取出当前发送队列里的全部消息
func drain(c *Client) [][]byte {
	var msgs [][]byte
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func event(patientID string) *domain.FlapData {
	return &domain.FlapData{
		PatientID:   patientID,
		ImageURL:    "http://x/" + patientID + ".jpg",
		Temperature: 36.5,
		Timestamp:   time.Now().UTC(),
	}
}

func TestHub_RegisterSendsConfirmation(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()

	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	msgs := drain(c)
	require.Len(t, msgs, 1)

	var confirm map[string]string
	require.NoError(t, json.Unmarshal(msgs[0], &confirm))
	assert.Equal(t, "Connected to real-time updates", confirm["message"])
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(zap.NewNop())

	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = newTestClient()
		hub.Register(clients[i])
		drain(clients[i]) // 丢弃确认消息
	}

	hub.Broadcast(event("p1"))

	// 每个连接恰好收到一份
	for _, c := range clients {
		msgs := drain(c)
		require.Len(t, msgs, 1)

		var got domain.FlapData
		require.NoError(t, json.Unmarshal(msgs[0], &got))
		assert.Equal(t, "p1", got.PatientID)
		assert.Equal(t, 36.5, got.Temperature)
	}
}

func TestHub_ClosedClientSkipped(t *testing.T) {
	hub := NewHub(zap.NewNop())

	closed := newTestClient()
	open1 := newTestClient()
	open2 := newTestClient()
	for _, c := range []*Client{closed, open1, open2} {
		hub.Register(c)
		drain(c)
	}

	// 已关闭但尚未从集合移除的连接：跳过，不影响其他连接
	closed.close()

	hub.Broadcast(event("p1"))

	assert.Empty(t, drain(closed))
	assert.Len(t, drain(open1), 1)
	assert.Len(t, drain(open2), 1)
}

func TestHub_LateJoinerMissesHistory(t *testing.T) {
	hub := NewHub(zap.NewNop())

	early := newTestClient()
	hub.Register(early)
	drain(early)

	hub.Broadcast(event("p1"))
	hub.Broadcast(event("p2"))
	hub.Broadcast(event("p3"))

	// 中途加入的连接只收到确认消息，收不到历史事件
	late := newTestClient()
	hub.Register(late)
	msgs := drain(late)
	require.Len(t, msgs, 1)
	var confirm map[string]string
	require.NoError(t, json.Unmarshal(msgs[0], &confirm))
	assert.Equal(t, "Connected to real-time updates", confirm["message"])

	// 之后的广播两个连接都能收到
	hub.Broadcast(event("p4"))
	assert.Len(t, drain(late), 1)
	assert.Len(t, drain(early), 4)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	c := newTestClient()
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	drain(c)
	hub.Broadcast(event("p1"))
	assert.Empty(t, drain(c))
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())

	slow := newTestClient()
	hub.Register(slow)
	drain(slow)

	// 填满发送缓冲
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, slow.enqueue([]byte(`{}`)))
	}

	healthy := newTestClient()
	hub.Register(healthy)
	drain(healthy)

	// 缓冲满的连接被跳过，健康连接正常收到
	hub.Broadcast(event("p1"))
	assert.Len(t, drain(healthy), 1)
	assert.Len(t, drain(slow), sendBufferSize)
}
