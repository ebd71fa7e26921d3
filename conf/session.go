package conf

import (
	"time"

	"github.com/playrummi/rummilink/define"
)

/*
 * conf for one client session
 */

//reconnect backoff conf
type ReconnectConf struct {
	Base        time.Duration `yaml:"base"`
	Multiplier  float64       `yaml:"multiplier"`
	Max         time.Duration `yaml:"max"`
	Jitter      float64       `yaml:"jitter"`
	MaxAttempts int           `yaml:"max_attempts"`
}

//heartbeat conf
type HeartbeatConf struct {
	Interval   time.Duration `yaml:"interval"`
	WindowSize int           `yaml:"window_size"`
}

//session conf
type SessionConf struct {
	GameId      uint64        `yaml:"game_id"`
	PlayerId    uint64        `yaml:"player_id"`
	PlayerName  string        `yaml:"player_name"`
	Token       string        `yaml:"token"`
	SnapshotAge time.Duration `yaml:"snapshot_age"` //durable snapshot expiry
	Reconnect   ReconnectConf `yaml:"reconnect"`
	Heartbeat   HeartbeatConf `yaml:"heartbeat"`
}

//fill zero values with defaults
func (c *SessionConf) SetDefaults() {
	if c.SnapshotAge <= 0 {
		c.SnapshotAge = define.SnapshotMaxAge
	}
	if c.Reconnect.Base <= 0 {
		c.Reconnect.Base = define.BackoffBase
	}
	if c.Reconnect.Multiplier <= 0 {
		c.Reconnect.Multiplier = define.BackoffMultiplier
	}
	if c.Reconnect.Max <= 0 {
		c.Reconnect.Max = define.BackoffMax
	}
	if c.Reconnect.Jitter <= 0 {
		c.Reconnect.Jitter = define.BackoffJitter
	}
	if c.Reconnect.MaxAttempts <= 0 {
		c.Reconnect.MaxAttempts = define.MaxAttempts
	}
	if c.Heartbeat.Interval <= 0 {
		c.Heartbeat.Interval = define.HeartbeatInterval
	}
	if c.Heartbeat.WindowSize <= 0 {
		c.Heartbeat.WindowSize = define.HeartbeatWindowSize
	}
}
