package conf

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

/*
 * conf for room
 */

type RoomConf struct {
	RoomId      uint64        `yaml:"room_id"`
	Players     []uint64      `yaml:"players"`
	PlayerNames []string      `yaml:"player_names"` //parallel to Players, optional
	SecretKey   string        `yaml:"secret_key"`
	MaxPlayers  int           `yaml:"max_players"` //0 means no limit
	TimeLimit   time.Duration `yaml:"-"`           //0 means no limit
	WaitWindow  time.Duration `yaml:"-"`           //single-player bounded wait
}

//yaml has no duration scalar, "2m" style strings are parsed by hand
func (c *RoomConf) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		RoomId      uint64   `yaml:"room_id"`
		Players     []uint64 `yaml:"players"`
		PlayerNames []string `yaml:"player_names"`
		SecretKey   string   `yaml:"secret_key"`
		MaxPlayers  int      `yaml:"max_players"`
		TimeLimit   string   `yaml:"time_limit"`
		WaitWindow  string   `yaml:"wait_window"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}

	c.RoomId = aux.RoomId
	c.Players = aux.Players
	c.PlayerNames = aux.PlayerNames
	c.SecretKey = aux.SecretKey
	c.MaxPlayers = aux.MaxPlayers

	if aux.TimeLimit != "" {
		d, err := time.ParseDuration(aux.TimeLimit)
		if err != nil {
			return fmt.Errorf("time_limit: %w", err)
		}
		c.TimeLimit = d
	}
	if aux.WaitWindow != "" {
		d, err := time.ParseDuration(aux.WaitWindow)
		if err != nil {
			return fmt.Errorf("wait_window: %w", err)
		}
		c.WaitWindow = d
	}
	return nil
}
