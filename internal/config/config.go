package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	GRPC      GRPCConfig
	Dashboard DashboardConfig
	Worker    WorkerConfig
	MQTT      MQTTConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// APIConfig describes the shipping API server.
type APIConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
	SeedFile  string
}

type GRPCConfig struct {
	Port int
}

// DashboardConfig describes how the dashboard talks to the shipping API.
type DashboardConfig struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	ETAInterval     time.Duration
	PortsInterval   time.Duration
	StormsInterval  time.Duration
	MapWidth        int
	MapHeight       int
	ShipAutoRefresh bool
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		API: APIConfig{
			Host:      getEnv("API_HOST", "localhost"),
			Port:      getEnvInt("API_PORT", 8000),
			RateLimit: getEnvInt("API_RATE_LIMIT", 20),
			SeedFile:  getEnv("API_SEED_FILE", ""),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Dashboard: DashboardConfig{
			APIBaseURL:      getEnv("DASHBOARD_API_URL", "http://localhost:8000"),
			RequestTimeout:  getEnvDuration("DASHBOARD_REQUEST_TIMEOUT", 10*time.Second),
			ETAInterval:     getEnvDuration("ETA_REFRESH_INTERVAL", 5*time.Second),
			PortsInterval:   getEnvDuration("PORTS_REFRESH_INTERVAL", 5*time.Minute),
			StormsInterval:  getEnvDuration("STORMS_REFRESH_INTERVAL", 5*time.Minute),
			MapWidth:        getEnvInt("MAP_WIDTH", 1280),
			MapHeight:       getEnvInt("MAP_HEIGHT", 720),
			ShipAutoRefresh: getEnvBool("ETA_AUTO_REFRESH", true),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		MQTT: MQTTConfig{
			Enabled:     getEnvBool("MQTT_ENABLED", false),
			Broker:      getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "maritime-dashboard"),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			TopicPrefix: strings.TrimSuffix(getEnv("MQTT_TOPIC_PREFIX", "maritime"), "/"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/shipping.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.API.RateLimit < 1 {
		return fmt.Errorf("api rate limit must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	u, err := url.Parse(c.Dashboard.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid dashboard api url: %q", c.Dashboard.APIBaseURL)
	}

	if c.Dashboard.ETAInterval < time.Second {
		return fmt.Errorf("ETA refresh interval must be at least 1 second")
	}
	if c.Dashboard.PortsInterval < 10*time.Second {
		return fmt.Errorf("ports refresh interval must be at least 10 seconds")
	}
	if c.Dashboard.StormsInterval < 10*time.Second {
		return fmt.Errorf("storms refresh interval must be at least 10 seconds")
	}
	if c.Dashboard.MapWidth < 100 || c.Dashboard.MapHeight < 100 {
		return fmt.Errorf("map size must be at least 100x100, got %dx%d", c.Dashboard.MapWidth, c.Dashboard.MapHeight)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("MQTT broker is required when MQTT is enabled")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
