package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string
	Port          int
	ClientURL     string
	ReadLimit     int64
	PingPeriod    time.Duration
	SendBuffer    int
	MsgRateLimit  int
	MsgRateWindow time.Duration
}

// Load reads an optional config.yaml and lets PORT / CLIENT_URL env
// vars override it. Every key has a default, so a bare environment
// still yields a working server.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("client_url", "http://localhost:3000")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("msg_rate_limit", 10)
	v.SetDefault("msg_rate_window", "2s")

	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("client_url", "CLIENT_URL")

	_ = v.ReadInConfig() // missing file is fine, defaults apply

	cfg := &Config{
		Mode:          v.GetString("mode"),
		Port:          v.GetInt("port"),
		ClientURL:     v.GetString("client_url"),
		ReadLimit:     v.GetInt64("read_limit"),
		PingPeriod:    v.GetDuration("ping_period"),
		SendBuffer:    v.GetInt("send_buffer"),
		MsgRateLimit:  v.GetInt("msg_rate_limit"),
		MsgRateWindow: v.GetDuration("msg_rate_window"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}
