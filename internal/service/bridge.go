package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/config"
	"github.com/tharushika0418/Vescueye-Deploy/internal/database"
	httpapi "github.com/tharushika0418/Vescueye-Deploy/internal/http"
	mqttclient "github.com/tharushika0418/Vescueye-Deploy/internal/mqtt"
	"github.com/tharushika0418/Vescueye-Deploy/internal/repository"
	"github.com/tharushika0418/Vescueye-Deploy/internal/store"
	"github.com/tharushika0418/Vescueye-Deploy/internal/ws"
)

// Consumer 消息消费入口（由 consumer.MQTTConsumer 实现，避免包循环依赖）
type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// BridgeService 桥接服务根对象
// 持有所有组件并负责装配：设备遥测经 MQTT 进入，入库 + 应答 + 实时推送，
// HTTP 层提供最新值与历史查询
type BridgeService struct {
	config *config.Config
	logger *zap.Logger

	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttclient.Client
	hub         *ws.Hub
	latest      store.LatestStore
	ingest      *IngestService
	consumer    Consumer
	httpServer  *http.Server
}

// NewBridgeService 创建桥接服务
// 证书加载失败、数据库不可达为启动错误；MQTT broker 暂时不可达不阻止启动
func NewBridgeService(cfg *config.Config, logger *zap.Logger) (*BridgeService, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 最新值缓存：默认进程内单槽，可切换为 Redis
	var latest store.LatestStore
	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" {
		redisClient = store.NewRedisClient(&cfg.Redis)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		latest = store.NewRedisLatest(redisClient)
	} else {
		latest = store.NewMemoryLatest()
	}

	// 初始化MQTT（双向 TLS；broker 不可达时后台持续重连）
	mqttClient, err := mqttclient.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create MQTT client: %w", err)
	}

	// 实时推送
	hub := ws.NewHub(logger)

	// 摄取管线
	flapRepo := repository.NewPostgresFlapDataRepository(db, logger)
	ingest := NewIngestService(
		cfg.MQTT.Topics.Data,
		cfg.MQTT.Topics.Response,
		cfg.MQTT.QoS,
		mqttClient,
		flapRepo,
		latest,
		hub,
		logger,
	)

	// HTTP 层
	router := httpapi.NewRouter(logger)
	router.RegisterIoTRoutes(httpapi.NewIoTHandler(latest, flapRepo, logger))
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(mqttClient))
	router.RegisterWSRoute("/ws", ws.ServeWS(hub, logger))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	return &BridgeService{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		hub:         hub,
		latest:      latest,
		ingest:      ingest,
		httpServer:  httpServer,
	}, nil
}

// SetConsumer 注入消息消费者（在 main 中装配）
func (s *BridgeService) SetConsumer(c Consumer) {
	s.consumer = c
}

// Ingest 返回摄取服务（供 consumer 装配使用）
func (s *BridgeService) Ingest() *IngestService {
	return s.ingest
}

// MQTTClient 返回 MQTT 客户端（供 consumer 装配使用）
func (s *BridgeService) MQTTClient() *mqttclient.Client {
	return s.mqttClient
}

// Start 启动服务
func (s *BridgeService) Start(ctx context.Context) error {
	s.logger.Info("Starting bridge service components")

	// 启动MQTT消费者
	if s.consumer != nil {
		if err := s.consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start MQTT consumer: %w", err)
		}
	}

	// 启动HTTP服务
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.HTTP.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("Bridge service started successfully")
	return nil
}

// Stop 停止服务
func (s *BridgeService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping bridge service")

	// 关闭HTTP服务
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error shutting down HTTP server", zap.Error(err))
	}

	// 停止Consumer
	if s.consumer != nil {
		if err := s.consumer.Stop(ctx); err != nil {
			s.logger.Error("Error stopping consumer", zap.Error(err))
		}
	}

	// 断开MQTT
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	// 关闭Redis
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing redis client", zap.Error(err))
		}
	}

	// 关闭数据库
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Error closing database", zap.Error(err))
		}
	}

	s.logger.Info("Bridge service stopped")
	return nil
}
