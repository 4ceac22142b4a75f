package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/domain"
)

// StreamConfig configures price stream behavior.
type StreamConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// PriceUpdate is one live tick pushed by the stream provider.
type PriceUpdate struct {
	Network     domain.Network
	PoolAddress string
	Price       float64
	ObservedAt  int64
}

// Stream maintains a WebSocket subscription to live pool prices, feeding the
// continuous tracking updater between poll cycles. It reconnects with
// exponential backoff and resubscribes all watched pools.
type Stream struct {
	endpoint string
	config   StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// watched pools for resubscription after reconnect
	watched   map[string]domain.Network // pool address -> network
	watchedMu sync.RWMutex

	updates chan PriceUpdate
	done    chan struct{}
	wg      sync.WaitGroup

	reconnecting atomic.Bool
}

// NewStream connects to the price stream endpoint.
func NewStream(ctx context.Context, endpoint string, config *StreamConfig) (*Stream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &Stream{
		endpoint: endpoint,
		config:   cfg,
		watched:  make(map[string]domain.Network),
		updates:  make(chan PriceUpdate, 1024),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

func (s *Stream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Updates returns the live tick channel. Closed when the stream closes.
func (s *Stream) Updates() <-chan PriceUpdate {
	return s.updates
}

// Watch subscribes to live prices for a pool.
func (s *Stream) Watch(network domain.Network, poolAddress string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}

	s.watchedMu.Lock()
	s.watched[poolAddress] = network
	s.watchedMu.Unlock()

	return s.writeJSON(subscribeMsg{Op: "subscribe", Network: string(network), Pool: poolAddress})
}

// Unwatch drops the subscription for a pool, typically on alert closure.
func (s *Stream) Unwatch(network domain.Network, poolAddress string) error {
	s.watchedMu.Lock()
	delete(s.watched, poolAddress)
	s.watchedMu.Unlock()

	if s.closed.Load() {
		return nil
	}
	return s.writeJSON(subscribeMsg{Op: "unsubscribe", Network: string(network), Pool: poolAddress})
}

// Close closes the stream and the updates channel.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.updates)
	return nil
}

func (s *Stream) writeJSON(v any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteJSON(v)
}

// readLoop reads messages and dispatches ticks until closed, reconnecting
// with exponential backoff on read errors.
func (s *Stream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = s.config.ReconnectDelay
		s.handleMessage(message)
	}
}

func (s *Stream) handleMessage(message []byte) {
	var tick tickMsg
	if err := json.Unmarshal(message, &tick); err != nil || tick.Pool == "" {
		return
	}

	update := PriceUpdate{
		Network:     domain.Network(tick.Network),
		PoolAddress: tick.Pool,
		Price:       tick.Price,
		ObservedAt:  tick.Timestamp,
	}
	if update.ObservedAt == 0 {
		update.ObservedAt = time.Now().UnixMilli()
	}

	// Drop ticks under backpressure rather than stall the read loop.
	select {
	case s.updates <- update:
	default:
		log.Warn().Str("pool", tick.Pool).Msg("price stream buffer full, tick dropped")
	}
}

// reconnect re-establishes the connection and resubscribes watched pools.
func (s *Stream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Will retry on the next read error.
		log.Warn().Err(err).Msg("price stream reconnect failed")
		return
	}

	s.watchedMu.RLock()
	pools := make(map[string]domain.Network, len(s.watched))
	for pool, network := range s.watched {
		pools[pool] = network
	}
	s.watchedMu.RUnlock()

	for pool, network := range pools {
		if err := s.writeJSON(subscribeMsg{Op: "subscribe", Network: string(network), Pool: pool}); err != nil {
			log.Warn().Err(err).Str("pool", pool).Msg("resubscribe failed")
			return
		}
	}
	log.Info().Int("pools", len(pools)).Msg("price stream reconnected")
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *Stream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Debug().Err(err).Msg("price stream ping failed")
				}
			}
			s.connMu.Unlock()
		}
	}
}

type subscribeMsg struct {
	Op      string `json:"op"`
	Network string `json:"network"`
	Pool    string `json:"pool"`
}

type tickMsg struct {
	Network   string  `json:"network"`
	Pool      string  `json:"pool"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}
