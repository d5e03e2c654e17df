package httpapi

import (
	"encoding/json"
	"net/http"
)

// Result 与前端约定的响应形状
// - success: 是否成功
// - data: 业务数据（latest 无数据时为 null）
// - message: 失败原因
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// OK 成功响应
func OK(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// Fail 失败响应
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// writeJSON 写出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
