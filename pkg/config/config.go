package config

import (
	"os"
	"sync"

	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host        string `json:"host"`        // The public domain name of the portal.
	ServerAddr  string `json:"serverAddr"`  // The address the API server binds to.
	MetricsAddr string `json:"metricsAddr"` // The address the metrics endpoint binds to.

	Auth struct {
		AccessTokenSecret      string `json:"accessTokenSecret"`
		RefreshTokenSecret     string `json:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `json:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `json:"refreshTokenExpiryHour"`
		MagicLinkExpiryMinute  int    `json:"magicLinkExpiryMinute"`
	} `json:"auth"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
	} `json:"postgres"`

	// Object storage for raw uploads and deliverables.
	S3 struct {
		Region              string `json:"region"`
		Bucket              string `json:"bucket"`
		AccessKeyID         string `json:"accessKeyID"`
		SecretAccessKey     string `json:"secretAccessKey"`
		PresignExpiryMinute int    `json:"presignExpiryMinute"`
	} `json:"s3"`

	SMTP struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`
}

var (
	once     sync.Once
	instance *Config
)

const defaultConfigPath = "etc/config.yaml"

// GetConfig returns the singleton configuration, loading it on first use
// from MODELMAGIC_CONFIG or the default path.
func GetConfig() *Config {
	once.Do(func() {
		path := os.Getenv("MODELMAGIC_CONFIG")
		if path == "" {
			path = defaultConfigPath
		}
		data, err := os.ReadFile(path)
		if err != nil {
			klog.Fatalf("read config %s: %v", path, err)
		}
		cfg := &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			klog.Fatalf("parse config %s: %v", path, err)
		}
		applyDefaults(cfg)
		instance = cfg
	})
	return instance
}

func applyDefaults(cfg *Config) {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8088"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}
	if cfg.Auth.AccessTokenExpiryHour == 0 {
		cfg.Auth.AccessTokenExpiryHour = 2
	}
	if cfg.Auth.RefreshTokenExpiryHour == 0 {
		cfg.Auth.RefreshTokenExpiryHour = 168
	}
	if cfg.Auth.MagicLinkExpiryMinute == 0 {
		cfg.Auth.MagicLinkExpiryMinute = 15
	}
	if cfg.S3.PresignExpiryMinute == 0 {
		cfg.S3.PresignExpiryMinute = 15
	}
}
