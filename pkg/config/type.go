package config

type MonitorConfig struct {
	MqttBroker   string `toml:"mqtt_broker"`
	MqttClientID string `toml:"mqtt_client_id"`
	MqttUsername string `toml:"mqtt_username"`
	MqttPassword string `toml:"mqtt_password"`

	// Topic the controllers publish telemetry on / we publish commands to.
	SubscribeTopic string `toml:"subscribe_topic"`
	PublishTopic   string `toml:"publish_topic"`

	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`

	DevicePoolSize        int `toml:"device_pool_size"`
	HistoryLimit          int `toml:"history_limit"`
	SnapshotIntervalSecs  int `toml:"snapshot_interval_secs"`
	AggregateIntervalSecs int `toml:"aggregate_interval_secs"`
	RecentWindowSecs      int `toml:"recent_window_secs"`

	// RS-485 unit ids per device slot; slots without an entry
	// cannot be switched remotely.
	CommandUnits []CommandUnit `toml:"command_units"`
}

type CommandUnit struct {
	Slot   int   `toml:"slot"`
	UnitID uint8 `toml:"unit_id"`
}

// UnitMap flattens the command unit list for lookup by slot.
func (c *MonitorConfig) UnitMap() map[int]uint8 {
	m := make(map[int]uint8, len(c.CommandUnits))
	for _, cu := range c.CommandUnits {
		m[cu.Slot] = cu.UnitID
	}
	return m
}
