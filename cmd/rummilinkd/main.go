package main

import (
	"os"
	"time"

	rummilink "github.com/playrummi/rummilink"
	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/room"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "rummilinkd",
		Short: "Resilient board-game session server",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "rummilink.yaml", "path to the yaml config")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	server, err := rummilink.NewServer(&rummilink.ServerConf{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Salt:     cfg.Salt,
	}, logger)
	if err != nil {
		return err
	}

	//rooms from config
	for i := range cfg.Rooms {
		roomCfg := cfg.Rooms[i]
		if _, err := server.CreateRoom(&roomCfg, room.NopListener{}); err != nil {
			logger.Warn().Err(err).Uint64("room", roomCfg.RoomId).Msg("create room failed")
		}
	}

	server.Start()
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "rummilinkd").
		Logger()
}
