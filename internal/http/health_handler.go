package httpapi

import (
	"net/http"
)

// ConnChecker broker 连接状态查询接口（由 MQTT 客户端实现）
type ConnChecker interface {
	IsConnected() bool
}

// healthStatus 健康检查响应
// broker_connected=false 表示摄取链路当前不可用（设备数据收不进来），
// 用于区分"还没有数据"与"摄取中断"
type healthStatus struct {
	Status          string `json:"status"`
	BrokerConnected bool   `json:"broker_connected"`
}

// HealthHandler 健康检查接口
type HealthHandler struct {
	broker ConnChecker
}

// NewHealthHandler 创建健康检查接口
func NewHealthHandler(broker ConnChecker) *HealthHandler {
	return &HealthHandler{broker: broker}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := healthStatus{Status: "ok", BrokerConnected: true}
	if h.broker != nil {
		status.BrokerConnected = h.broker.IsConnected()
	}

	// broker 断开不返回非 200：服务本身存活，只是摄取降级
	writeJSON(w, http.StatusOK, status)
}
