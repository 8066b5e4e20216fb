package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	WebSocket WebSocketConfig
}

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type WebSocketConfig struct {
	MaxConnections    int
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	SendBufferSize    int
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("FARM_HOST", "")
		viper.SetDefault("FARM_PORT", "8080")
		viper.SetDefault("FARM_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("FARM_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("FARM_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("FARM_JWT_SECRET", "secret")
		viper.SetDefault("FARM_JWT_EXPIRE", "24h")
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "farm")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")
		viper.SetDefault("REDIS_HOST", "localhost")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_TOPIC", "farm-events")
		viper.SetDefault("KAFKA_GROUP_ID", "farm-analytics")
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "farm-media")
		viper.SetDefault("WS_MAX_CONNECTIONS", 10000)
		viper.SetDefault("WS_HEARTBEAT_INTERVAL", 30*time.Second)
		viper.SetDefault("WS_WRITE_TIMEOUT", 10*time.Second)
		viper.SetDefault("WS_SEND_BUFFER_SIZE", 64)
		viper.AutomaticEnv()

		ConfigInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("FARM_HOST"),
				Port:         viper.GetString("FARM_PORT"),
				ReadTimeout:  viper.GetDuration("FARM_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("FARM_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("FARM_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				Host:         viper.GetString("REDIS_HOST"),
				Port:         viper.GetString("REDIS_PORT"),
				Password:     viper.GetString("REDIS_PASSWORD"),
				DB:           viper.GetInt("REDIS_DB"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("FARM_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("FARM_JWT_EXPIRE"),
			},
			Kafka: KafkaConfig{
				Brokers: strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
				Topic:   viper.GetString("KAFKA_TOPIC"),
				GroupID: viper.GetString("KAFKA_GROUP_ID"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
			},
			WebSocket: WebSocketConfig{
				MaxConnections:    viper.GetInt("WS_MAX_CONNECTIONS"),
				HeartbeatInterval: viper.GetDuration("WS_HEARTBEAT_INTERVAL"),
				WriteTimeout:      viper.GetDuration("WS_WRITE_TIMEOUT"),
				SendBufferSize:    viper.GetInt("WS_SEND_BUFFER_SIZE"),
			},
		}
	})

	return ConfigInstance, nil
}

// PostgresURI builds the DSN for the GORM postgres driver
func (c *DatabaseConfig) PostgresURI() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
