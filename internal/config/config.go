package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
// 连接 AWS IoT Core 使用双向 TLS 认证，三个证书文件路径均为必填
type MQTTConfig struct {
	Broker   string
	ClientID string
	QoS      byte

	// 双向 TLS 认证
	KeyPath  string // 设备私钥
	CertPath string // 设备证书
	CAPath   string // CA 证书链

	Topics struct {
		Data     string // 数据主题，如 "sensor/data"
		Response string // 应答主题，如 "sensor/response"
	}
}

// Config 桥接服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	HTTP struct {
		Addr string
	}

	// Cache.Backend: "memory"（单槽内存缓存）或 "redis"
	Cache struct {
		Backend string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "vascueye")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("AWS_IOT_ENDPOINT", "ssl://localhost:8883")
	cfg.MQTT.ClientID = getEnv("AWS_IOT_CLIENT_ID", "vascueye-bridge")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.KeyPath = getEnv("AWS_IOT_PRIVATE_KEY", "/home/ubuntu/certs/privateKey.pem")
	cfg.MQTT.CertPath = getEnv("AWS_IOT_CERTIFICATE", "/home/ubuntu/certs/certificate.pem")
	cfg.MQTT.CAPath = getEnv("AWS_IOT_CA", "/home/ubuntu/certs/caCert.pem")
	cfg.MQTT.Topics.Data = getEnv("MQTT_TOPIC_DATA", "sensor/data")
	cfg.MQTT.Topics.Response = getEnv("MQTT_TOPIC_RESPONSE", "sensor/response")

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5000")

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", "memory")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
