package main

import (
	"log"
	"os"
	"time"

	rummilink "github.com/playrummi/rummilink"
	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/room"
	"github.com/rs/zerolog"
)

//inter macro define
const (
	ServerHost = "127.0.0.1"
	ServerPort = 6100
	Password   = "test"
	Salt       = "abc"
	SecretKey  = "testRoom"
)

func main() {
	//defer
	defer func() {
		if err := recover(); err != nil {
			log.Println("panic happened, err:", err)
		}
	}()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	//init
	server, err := rummilink.NewServer(&rummilink.ServerConf{
		Host:     ServerHost,
		Port:     ServerPort,
		Password: Password,
		Salt:     Salt,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	//try create room
	go createRoom(server, logger)

	//start
	server.Start()
}

func createRoom(server *rummilink.Server, logger zerolog.Logger) {
	time.Sleep(time.Second * 2)

	//create room
	roomId := uint64(1)
	_, err := server.CreateRoom(&conf.RoomConf{
		RoomId:      roomId,
		Players:     []uint64{1, 2},
		PlayerNames: []string{"alice", "bob"},
		SecretKey:   SecretKey,
		WaitWindow:  time.Minute,
	}, room.NopListener{})
	if err != nil {
		logger.Error().Err(err).Msg("create room failed")
		return
	}
	logger.Info().Uint64("room", roomId).Msg("room created")
}
