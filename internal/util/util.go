package util

import (
	"github.com/picontrol/eversolo2hub/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Device: config.DeviceConfig{
			Port:                 9529,
			ClientName:           "PiControlHub",
			ClientUUID:           "f6c4ad46-f0d3-11ee-a951-0242ac120002",
			ConnectTimeoutMillis: 10000,
			CommandTimeoutMillis: 5000,
		},
		Discovery: config.DiscoveryConfig{
			Service:            "_adb._tcp",
			Domain:             "local.",
			CacheRefreshMillis: 0,
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "eversolo2hub",
		},
		Port: 8080,
	}
}
