package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	rummilink "github.com/playrummi/rummilink"
	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/session"
	"github.com/rs/zerolog"
)

//inter macro define
const (
	ServerHost = "127.0.0.1"
	ServerPort = 6100
	Password   = "test"
	Salt       = "abc"
	SecretKey  = "testRoom"
	GameId     = 1
	PlayerId   = 1
	PlayerName = "alice"
)

//events logs the session callbacks a real ui would render
type events struct {
	session.NopListener
}

func (events) OnStateChanged(from, to session.ConnectionState, reason string) {
	fmt.Printf("state %v -> %v (%s)\n", from, to, reason)
}

func (events) OnStateRestored(gameId uint64, state json.RawMessage, message string) {
	fmt.Printf("game %d restored: %s\n", gameId, message)
}

func (events) OnRestoreFailed(reason string, fallbacks []session.Fallback) {
	fmt.Printf("restore failed: %s\n", reason)
	for _, fb := range fallbacks {
		fmt.Printf("  option: %s - %s\n", fb.Action, fb.Description)
	}
}

func (events) OnSinglePlayerRemaining(message string, wait time.Duration, options []string) {
	fmt.Printf("%s (wait %v, options %v)\n", message, wait, options)
}

func (events) OnQuality(tier session.QualityTier, avgRtt time.Duration) {
	fmt.Printf("link quality: %v (avg rtt %v)\n", tier, avgRtt)
}

func main() {
	//defer
	defer func() {
		if err := recover(); err != nil {
			log.Println("panic happened, err:", err)
		}
	}()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	//init
	client, err := rummilink.NewClient(&rummilink.ClientConf{
		Host:     ServerHost,
		Port:     ServerPort,
		Password: Password,
		Salt:     Salt,
		Session: conf.SessionConf{
			GameId:     GameId,
			PlayerId:   PlayerId,
			PlayerName: PlayerName,
			Token:      SecretKey,
		},
	}, events{}, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Quit()

	//connect and play a little
	if err := client.Connect(); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		time.Sleep(time.Second * 2)
		payload, _ := json.Marshal(map[string]interface{}{
			"tile": i,
		})
		//queued while disconnected, replayed in order on reconnect
		if err := client.SendAction("place_tile", payload); err != nil {
			fmt.Println("send action failed:", err)
		}
	}

	time.Sleep(time.Second * 10)
}
