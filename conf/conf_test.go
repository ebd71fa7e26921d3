package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playrummi/rummilink/define"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfDefaults(t *testing.T) {
	cfg := &SessionConf{}
	cfg.SetDefaults()

	assert.Equal(t, define.SnapshotMaxAge, cfg.SnapshotAge)
	assert.Equal(t, define.BackoffBase, cfg.Reconnect.Base)
	assert.Equal(t, define.BackoffMultiplier, cfg.Reconnect.Multiplier)
	assert.Equal(t, define.BackoffMax, cfg.Reconnect.Max)
	assert.Equal(t, define.BackoffJitter, cfg.Reconnect.Jitter)
	assert.Equal(t, define.MaxAttempts, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, define.HeartbeatInterval, cfg.Heartbeat.Interval)
	assert.Equal(t, define.HeartbeatWindowSize, cfg.Heartbeat.WindowSize)
}

func TestSessionConfKeepsExplicitValues(t *testing.T) {
	cfg := &SessionConf{
		Reconnect: ReconnectConf{
			Base:        2 * time.Second,
			MaxAttempts: 3,
		},
	}
	cfg.SetDefaults()

	assert.Equal(t, 2*time.Second, cfg.Reconnect.Base)
	assert.Equal(t, 3, cfg.Reconnect.MaxAttempts)
	//untouched fields still fall back
	assert.Equal(t, define.BackoffMax, cfg.Reconnect.Max)
}

func TestLoadServerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rummilink.yaml")
	data := []byte(`
host: 127.0.0.1
port: 7200
password: secret
salt: pepper
log_level: debug
rooms:
  - room_id: 1
    players: [1, 2, 3]
    player_names: [alice, bob, carol]
    secret_key: roomkey
    wait_window: 2m
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 7200, cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Rooms, 1)
	assert.Equal(t, uint64(1), cfg.Rooms[0].RoomId)
	assert.Equal(t, []uint64{1, 2, 3}, cfg.Rooms[0].Players)
	assert.Equal(t, "roomkey", cfg.Rooms[0].SecretKey)
	assert.Equal(t, 2*time.Minute, cfg.Rooms[0].WaitWindow)
}

func TestLoadServerFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rummilink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("password: x\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 6100, cfg.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
