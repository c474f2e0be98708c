package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type AWSConfig struct {
	Region            string
	S3Bucket          string
	PresignTTL        time.Duration
	SQSEventsQueueURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DetectionConfig struct {
	DedupeWindow time.Duration
}

type ExternalServicesConfig struct {
	ComplianceServiceURL    string
	ComplianceInternalToken string
}

type Config struct {
	Environment      string
	HTTP             HTTPConfig
	DB               DBConfig
	Auth             AuthConfig
	AWS              AWSConfig
	Redis            RedisConfig
	Detection        DetectionConfig
	ExternalServices ExternalServicesConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		AWS: AWSConfig{
			Region:            v.GetString("AWS_REGION"),
			S3Bucket:          v.GetString("S3_BUCKET"),
			PresignTTL:        v.GetDuration("S3_PRESIGN_TTL"),
			SQSEventsQueueURL: v.GetString("SQS_EVENTS_QUEUE_URL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Detection: DetectionConfig{
			DedupeWindow: v.GetDuration("DETECTION_DEDUPE_WINDOW"),
		},
		ExternalServices: ExternalServicesConfig{
			ComplianceServiceURL:    v.GetString("COMPLIANCE_SERVICE_URL"),
			ComplianceInternalToken: v.GetString("COMPLIANCE_INTERNAL_TOKEN"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "ap-south-1"
	}
	if cfg.AWS.PresignTTL == 0 {
		cfg.AWS.PresignTTL = 15 * time.Minute
	}
	if cfg.Detection.DedupeWindow == 0 {
		cfg.Detection.DedupeWindow = 5 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.AWS.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	return nil
}
