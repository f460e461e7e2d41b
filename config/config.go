package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

type ServerConfig struct {
	// Websocket endpoint of the authoritative game server, e.g.
	// wss://avalon.example.com. The room id and credential are appended
	// at connect time.
	URL string `mapstructure:"url"`
}

type ClientConfig struct {
	// 断线后重连的固定延迟，没有退避增长
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	// Delay before redirecting home after a host kick.
	KickRedirectDelay time.Duration `mapstructure:"kick_redirect_delay"`
	// Where the cached credential / room id file lives. Empty means
	// the user config directory.
	CredentialPath string `mapstructure:"credential_path"`
}

type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.url", "ws://localhost:8000")
	viper.SetDefault("client.reconnect_delay", 3*time.Second)
	viper.SetDefault("client.kick_redirect_delay", 5*time.Second)
	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.address", ":9100")

	viper.AutomaticEnv()

	// A missing config file is fine, the defaults above cover it.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
