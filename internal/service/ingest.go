package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
	"github.com/tharushika0418/Vescueye-Deploy/internal/repository"
	"github.com/tharushika0418/Vescueye-Deploy/internal/store"
)

// 设备应答消息内容
const (
	ackStatusSuccess = "success"
	ackStatusError   = "error"

	msgStored      = "Data stored successfully"
	msgStoreFailed = "Failed to store data"
	msgInvalidJSON = "Invalid JSON format"
)

// ackMessage 发回设备的应答
type ackMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Publisher 应答发布接口（由 MQTT 客户端实现）
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Broadcaster 实时推送接口（由 ws.Hub 实现）
type Broadcaster interface {
	Broadcast(data *domain.FlapData)
}

// IngestService 遥测数据摄取管线：解析 → 校验 → 入库 → 应答 → 推送
// repo 与 broadcaster 均可为 nil，对应步骤跳过
// （原有的"只入库"与"只推送"两套桥接合并为一个可配置管线）
type IngestService struct {
	dataTopic     string
	responseTopic string
	qos           byte

	publisher   Publisher
	repo        repository.FlapDataRepository
	latest      store.LatestStore
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewIngestService 创建摄取服务
func NewIngestService(
	dataTopic string,
	responseTopic string,
	qos byte,
	publisher Publisher,
	repo repository.FlapDataRepository,
	latest store.LatestStore,
	broadcaster Broadcaster,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		dataTopic:     dataTopic,
		responseTopic: responseTopic,
		qos:           qos,
		publisher:     publisher,
		repo:          repo,
		latest:        latest,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// HandleMessage 处理一条 MQTT 消息
// 每条消息是独立的工作单元：错误只影响本条消息，不向上传播
// 没有去重：broker 重复投递同一条消息会产生两条记录、两次推送（at-least-once 契约）
func (s *IngestService) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	// 非数据主题的消息忽略（不是错误）
	if topic != s.dataTopic {
		s.logger.Debug("Ignoring message on unrelated topic", zap.String("topic", topic))
		return nil
	}

	// 1. 解析
	var input domain.FlapDataInput
	if err := json.Unmarshal(payload, &input); err != nil {
		s.logger.Warn("Failed to parse MQTT message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		s.sendAck(ackStatusError, msgInvalidJSON)
		return nil
	}

	// 2. 校验必填字段（与解析失败走同一应答路径，设备侧不区分）
	if err := input.Validate(); err != nil {
		s.logger.Warn("Rejected telemetry message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		s.sendAck(ackStatusError, msgInvalidJSON)
		return nil
	}

	data := input.ToFlapData(time.Now().UTC())

	// 3. 入库（失败即丢弃本条数据，重试策略由上游设备负责）
	if s.repo != nil {
		if err := s.repo.Insert(ctx, data); err != nil {
			s.logger.Error("Failed to store flap data",
				zap.String("patient_id", data.PatientID),
				zap.Error(err),
			)
			s.sendAck(ackStatusError, msgStoreFailed)
			return nil
		}
	}

	// 4. 应答
	s.sendAck(ackStatusSuccess, msgStored)

	// 5. 更新最新值缓存（无条件覆盖）
	if s.latest != nil {
		if err := s.latest.Set(ctx, data); err != nil {
			s.logger.Warn("Failed to update latest-value cache", zap.Error(err))
		}
	}

	// 6. 实时推送（尽力而为）
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(data)
	}

	s.logger.Info("Ingested flap data",
		zap.String("patient_id", data.PatientID),
		zap.Float64("temperature", data.Temperature),
	)

	return nil
}

// sendAck 发布应答消息
// 应答发布失败只记日志，绝不让摄取管线因此失败
func (s *IngestService) sendAck(status, message string) {
	raw, err := json.Marshal(ackMessage{Status: status, Message: message})
	if err != nil {
		s.logger.Error("Failed to marshal ack message", zap.Error(err))
		return
	}

	if err := s.publisher.Publish(s.responseTopic, s.qos, false, raw); err != nil {
		s.logger.Warn("Failed to publish ack message",
			zap.String("topic", s.responseTopic),
			zap.Error(err),
		)
	}
}
