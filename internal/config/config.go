package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel  zapcore.Level
	Device    DeviceConfig    `mapstructure:"device"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Lirc      LircConfig      `mapstructure:"lirc"`
	Icons     IconsConfig     `mapstructure:"icons"`
	Port      uint            `mapstructure:"port"`
	HttpLog   bool            `mapstructure:"http_log"`
}

type DeviceConfig struct {
	Port                 uint   `mapstructure:"port"`
	ClientName           string `mapstructure:"client_name"`
	ClientUUID           string `mapstructure:"client_uuid"`
	ConnectTimeoutMillis uint32 `mapstructure:"connect_timeout_millis"`
	CommandTimeoutMillis uint32 `mapstructure:"command_timeout_millis"`
}

type DiscoveryConfig struct {
	Service            string `mapstructure:"service"`
	Domain             string `mapstructure:"domain"`
	CacheFile          string `mapstructure:"cache_file"`
	CacheRefreshMillis uint32 `mapstructure:"cache_refresh_millis"`
}

type LircConfig struct {
	Socket string
	Remote string
}

type IconsConfig struct {
	Dir string
}

type MQTTConfig struct {
	Enable    bool
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
