package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/AbidHayat/tubewell-project/pkg/pathing"
)

var ActiveMonitorConfig *MonitorConfig

// DefaultMonitorConfig matches the field deployment next to the pumps.
func DefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		MqttBroker:            "tcp://broker.hivemq.com:1883",
		MqttClientID:          "tubewell-monitor",
		SubscribeTopic:        "/techno/pub",
		PublishTopic:          "/techno/sub",
		ListenAddress:         "0.0.0.0",
		ListenPort:            5000,
		DevicePoolSize:        30,
		HistoryLimit:          500,
		SnapshotIntervalSecs:  60,
		AggregateIntervalSecs: 900,
		RecentWindowSecs:      20,
		CommandUnits: []CommandUnit{
			{Slot: 0, UnitID: 3},
		},
	}
}

func LoadMonitorConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "tubewell_monitor.toml")
	cfg, err := LoadMonitorConfigFrom(configPath)
	if err != nil {
		return err
	}
	ActiveMonitorConfig = cfg
	return nil
}

// LoadMonitorConfigFrom reads the config at path,
// writing a default file first if none exists.
func LoadMonitorConfigFrom(configPath string) (*MonitorConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultMonitorConfig()

		// Create file
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return nil, err
		}
		defer cfgFile.Close()
		toml.NewEncoder(cfgFile).Encode(cfg)
		return cfg, nil
	}

	// Load existing config
	var cfg MonitorConfig
	_, err := toml.DecodeFile(configPath, &cfg)
	if err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills zero-valued sizing fields so a sparse
// hand-edited config still yields a working pool.
func applyDefaults(cfg *MonitorConfig) {
	def := DefaultMonitorConfig()
	if cfg.DevicePoolSize <= 0 {
		cfg.DevicePoolSize = def.DevicePoolSize
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.SnapshotIntervalSecs <= 0 {
		cfg.SnapshotIntervalSecs = def.SnapshotIntervalSecs
	}
	if cfg.AggregateIntervalSecs <= 0 {
		cfg.AggregateIntervalSecs = def.AggregateIntervalSecs
	}
	if cfg.RecentWindowSecs <= 0 {
		cfg.RecentWindowSecs = def.RecentWindowSecs
	}
}
