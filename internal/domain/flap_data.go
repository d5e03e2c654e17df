package domain

import (
	"fmt"
	"time"
)

// FlapData 皮瓣监测遥测记录（单次读数）
// 由远程设备通过 MQTT 上报，入库后不可变更——新的读数是新记录，不是更新
type FlapData struct {
	ID          string    `json:"id,omitempty"`
	PatientID   string    `json:"patient_id"`
	ImageURL    string    `json:"image_url"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// FlapDataInput 设备上报的原始载荷
// Temperature 用指针以区分"缺失"与 0 值；Timestamp 可选，缺失时取接收时间
type FlapDataInput struct {
	PatientID   string     `json:"patient_id"`
	ImageURL    string     `json:"image_url"`
	Temperature *float64   `json:"temperature"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// MissingFieldError 必填字段缺失
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Validate 校验必填字段
// 仅检查字段是否存在，不做语义校验（如温度范围）——设备上报什么就接受什么
func (in *FlapDataInput) Validate() error {
	if in.PatientID == "" {
		return &MissingFieldError{Field: "patient_id"}
	}
	if in.ImageURL == "" {
		return &MissingFieldError{Field: "image_url"}
	}
	if in.Temperature == nil {
		return &MissingFieldError{Field: "temperature"}
	}
	return nil
}

// ToFlapData 转换为遥测记录，receivedAt 为缺省时间戳
func (in *FlapDataInput) ToFlapData(receivedAt time.Time) *FlapData {
	ts := receivedAt
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	return &FlapData{
		PatientID:   in.PatientID,
		ImageURL:    in.ImageURL,
		Temperature: *in.Temperature,
		Timestamp:   ts,
	}
}
