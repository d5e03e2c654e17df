package consumer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/config"
	"github.com/tharushika0418/Vescueye-Deploy/internal/mqtt"
	"github.com/tharushika0418/Vescueye-Deploy/internal/service"
)

// MQTTConsumer MQTT消息消费者
// 订阅数据主题，把每条消息交给摄取管线处理
type MQTTConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	ingest     *service.IngestService
	logger     *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	ingest *service.IngestService,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		ingest:     ingest,
		logger:     logger,
	}
}

// Start 启动消费者
func (c *MQTTConsumer) Start(ctx context.Context) error {
	// 订阅传感器数据主题
	if err := c.mqttClient.Subscribe(c.config.MQTT.Topics.Data, c.config.MQTT.QoS, func(topic string, payload []byte) error {
		return c.ingest.HandleMessage(ctx, topic, payload)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to data topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", c.config.MQTT.Topics.Data),
	)

	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if err := c.mqttClient.Unsubscribe(c.config.MQTT.Topics.Data); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}
