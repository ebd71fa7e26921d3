package rummilink

import (
	"encoding/json"
	"time"

	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/metrics"
	"github.com/playrummi/rummilink/network"
	"github.com/playrummi/rummilink/session"
	"github.com/playrummi/rummilink/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

/*
 * client api face
 * - one client per active game session, constructed explicitly
 *   and passed by reference, never a shared singleton
 */

//face info
type Client struct {
	conf     *ClientConf
	log      zerolog.Logger
	store    iface.IStore
	registry *prometheus.Registry
	session  *session.Session
}

//construct
func NewClient(
	cfg *ClientConf,
	listener session.Listener,
	logger zerolog.Logger,
) (*Client, error) {
	//self init
	this := &Client{
		conf: cfg,
		log:  logger,
	}

	//init durable store
	var (
		store iface.IStore
		err   error
	)
	if cfg.StoreDir != "" {
		store, err = storage.OpenBadgerStore(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
	} else {
		store = storage.NewMemoryStore()
	}
	this.store = store

	//init metrics
	var collector *metrics.Collector
	if cfg.Metrics {
		this.registry = prometheus.NewRegistry()
		collector = metrics.NewCollector(this.registry)
	}

	//init transport dialer
	dialer, err := network.NewDialer(cfg.Host, cfg.Port, cfg.Password, cfg.Salt, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	//init session core
	this.session = session.NewSession(
		&cfg.Session,
		dialer,
		store,
		listener,
		logger,
		nil,
		collector,
	)
	return this, nil
}

///////////////
//service api
///////////////

//begin the connect cycle, also the manual retry from failed
func (f *Client) Connect() error {
	return f.session.Connect()
}

//intentional close, preserves nothing
func (f *Client) Close() error {
	return f.session.Close()
}

//stop the session loop and release the store
func (f *Client) Quit() {
	f.session.Quit()
	if f.store != nil {
		f.store.Close()
	}
}

//current connection state
func (f *Client) State() session.ConnectionState {
	return f.session.State()
}

//send a game action, buffered in order while disconnected
func (f *Client) SendAction(name string, payload json.RawMessage) error {
	return f.session.SendAction(name, payload)
}

//feed the latest opaque game state blob for preservation
func (f *Client) UpdateGameState(state json.RawMessage) error {
	return f.session.UpdateGameState(state)
}

//report underlying network connectivity
func (f *Client) SetNetworkAvailable(available bool) error {
	return f.session.SetNetworkAvailable(available)
}

//menu of manual recovery strategies
func (f *Client) Fallbacks() ([]session.Fallback, error) {
	return f.session.Fallbacks()
}

//run one recovery strategy
func (f *Client) ExecuteFallback(action string) error {
	return f.session.ExecuteFallback(action)
}

//pick an option of the single-player wait window
func (f *Client) ChooseWaitOption(option string) error {
	return f.session.ChooseWaitOption(option)
}

//remaining single-player wait time
func (f *Client) WaitWindowRemaining() (time.Duration, error) {
	return f.session.WaitWindowRemaining()
}

//peer presence snapshot with derived stability
func (f *Client) Peers() ([]session.PeerPresence, session.Stability, error) {
	return f.session.Peers()
}

//link quality from the heartbeat window
func (f *Client) Quality() (session.QualityTier, time.Duration, error) {
	return f.session.Quality()
}

//prometheus registry, nil unless metrics are enabled
func (f *Client) MetricsRegistry() *prometheus.Registry {
	return f.registry
}
