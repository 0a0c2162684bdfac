// Package socket owns the one persistent connection to the backend's event
// channel. It exposes emit-with-acknowledgement and subscribe-by-event-name
// primitives; everything above it speaks named events and envelopes.
//
// Concurrency: any number of EmitWithAck calls may be outstanding at once,
// each correlated to its response by a unique id. Completion order is not
// related to issue order. Push frames are handed to a pushq.Dispatcher so
// the read loop never blocks on a slow handler.
package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/pushq"
)

// Handler receives the raw data payload of one push event. At most one
// handler is registered per event name; registering again replaces it.
type Handler func(data json.RawMessage)

type result struct {
	env Envelope
	err error
}

// Socket is the transport socket client.
type Socket struct {
	url    string
	header http.Header
	cfg    Config
	dialer *websocket.Dialer

	dispatch *pushq.Dispatcher

	mu           sync.Mutex // guards conn and reconnecting
	conn         *websocket.Conn
	reconnecting bool

	writeMu sync.Mutex // gorilla/websocket allows one concurrent writer

	pendingMu sync.Mutex
	pending   map[string]chan result

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	closed atomic.Bool
}

// New constructs a Socket. The connection itself is lazy: the first
// Connect or EmitWithAck dials. header is sent with the websocket handshake
// (authorization, typically).
func New(url string, header http.Header, cfg Config) *Socket {
	cfg = cfg.withDefaults()
	qcfg, err := pushq.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("invalid pushq environment config, using defaults")
		qcfg = pushq.Config{}
	}
	return &Socket{
		url:    url,
		header: header,
		cfg:    cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		dispatch: pushq.NewDispatcher(qcfg),
		pending:  make(map[string]chan result),
		handlers: make(map[string]Handler),
	}
}

// Connect establishes the connection if it is not already up. Idempotent.
// While a background reconnect is in progress the call fails with a
// transport error rather than dialing a second connection.
func (s *Socket) Connect(ctx context.Context) error {
	if s.closed.Load() {
		return errs.NewTransport("socket closed", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	if s.reconnecting {
		return errs.NewTransport("socket connection lost, reconnecting", nil)
	}
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return errs.NewTransport("socket dial failed", err)
	}
	s.startLocked(conn)
	return nil
}

// startLocked installs conn and starts its read and ping loops. s.mu held.
func (s *Socket) startLocked(conn *websocket.Conn) {
	s.conn = conn
	s.reconnecting = false
	go s.readLoop(conn)
	go s.pingLoop(conn)
}

// EmitWithAck sends event with payload and waits for the server's envelope.
// Transport failures (write error, timeout, connection loss) are returned as
// errors; an ok=false envelope is returned to the caller for domain-level
// interpretation. No automatic retry is performed.
func (s *Socket) EmitWithAck(ctx context.Context, event string, payload any) (Envelope, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, err
	}
	if err := s.Connect(ctx); err != nil {
		return Envelope{}, err
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return Envelope{}, errs.NewTransport("socket not connected", nil)
	}

	id := uuid.NewString()
	ch := make(chan result, 1)
	s.pendingMu.Lock()
	s.pending[id] = ch
	s.pendingMu.Unlock()

	if err := s.writeFrame(conn, frame{ID: id, Event: event, Payload: payload}); err != nil {
		s.removePending(id)
		ackFailuresTotal.WithLabelValues("write").Inc()
		return Envelope{}, errs.NewTransport("socket write failed", err)
	}
	emitsTotal.WithLabelValues(event).Inc()

	timer := time.NewTimer(s.cfg.AckTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.removePending(id)
		return Envelope{}, ctx.Err()
	case <-timer.C:
		s.removePending(id)
		ackFailuresTotal.WithLabelValues("timeout").Inc()
		return Envelope{Error: "timeout"}, errs.NewTransport("timeout waiting for ack: "+event, nil)
	case r := <-ch:
		if r.err != nil {
			ackFailuresTotal.WithLabelValues("disconnect").Inc()
			return Envelope{}, r.err
		}
		return r.env, nil
	}
}

// On registers handler for event, replacing any previous registration.
// Handlers survive reconnects; re-arming after a drop needs no extra work.
func (s *Socket) On(event string, handler Handler) {
	s.handlersMu.Lock()
	s.handlers[event] = handler
	s.handlersMu.Unlock()
}

// Off removes the handler for event, if any.
func (s *Socket) Off(event string) {
	s.handlersMu.Lock()
	delete(s.handlers, event)
	s.handlersMu.Unlock()
}

// Close tears the socket down. In-flight acknowledgements fail with a
// transport error. Safe to call more than once.
func (s *Socket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		s.writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		_ = conn.Close()
	}
	s.failPending(errs.NewTransport("socket closed", nil))
	s.dispatch.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (s *Socket) writeFrame(conn *websocket.Conn, f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteJSON(f)
}

func (s *Socket) removePending(id string) {
	s.pendingMu.Lock()
	delete(s.pending, id)
	s.pendingMu.Unlock()
}

// failPending resolves every outstanding acknowledgement with err.
func (s *Socket) failPending(err error) {
	s.pendingMu.Lock()
	for id, ch := range s.pending {
		ch <- result{err: err}
		delete(s.pending, id)
	}
	s.pendingMu.Unlock()
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if s.closed.Load() {
				return
			}
			log.Debug().Err(err).Msg("socket read failed")
			s.handleDisconnect(conn)
			return
		}

		switch {
		case f.ID != "":
			s.resolveAck(f)
		case f.Event != "":
			s.dispatchPush(f)
		}
	}
}

func (s *Socket) resolveAck(f frame) {
	s.pendingMu.Lock()
	ch, ok := s.pending[f.ID]
	if ok {
		delete(s.pending, f.ID)
	}
	s.pendingMu.Unlock()
	if !ok {
		// Ack for a call that already timed out or was cancelled.
		log.Debug().Str("id", f.ID).Msg("dropping unmatched ack")
		return
	}
	ch <- result{env: f.envelope()}
}

func (s *Socket) dispatchPush(f frame) {
	pushesReceivedTotal.WithLabelValues(f.Event).Inc()
	s.handlersMu.RLock()
	h := s.handlers[f.Event]
	s.handlersMu.RUnlock()
	if h == nil {
		return
	}
	data := f.Data
	err := s.dispatch.Submit(context.Background(), f.Event, pushq.JobFunc(func(context.Context) error {
		h(data)
		return nil
	}))
	if err != nil {
		// Reloads triggered by pushes are idempotent; dropping one is safe.
		log.Warn().Err(err).Str("event", f.Event).Msg("push event dropped")
	}
}

// handleDisconnect fails in-flight calls and starts the reconnect loop.
func (s *Socket) handleDisconnect(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		// A newer connection already replaced this one.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.reconnecting = true
	s.mu.Unlock()

	_ = conn.Close()
	s.failPending(errs.NewTransport("socket connection lost", nil))
	go s.reconnectLoop()
}

// reconnectLoop redials with exponential backoff until it succeeds or the
// socket is closed. Registered push handlers are kept, so subscriptions are
// re-armed implicitly and idempotently once the new connection is up.
func (s *Socket) reconnectLoop() {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.ReconnectInitial
	exp.MaxInterval = s.cfg.ReconnectMax
	exp.MaxElapsedTime = 0 // retry until closed
	exp.Reset()

	for {
		if s.closed.Load() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HandshakeTimeout)
		conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
		cancel()
		if err == nil {
			s.mu.Lock()
			if s.closed.Load() {
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
			s.startLocked(conn)
			s.mu.Unlock()
			reconnectsTotal.Inc()
			log.Info().Msg("socket reconnected")
			return
		}
		wait := exp.NextBackOff()
		log.Debug().Err(err).Dur("retry_in", wait).Msg("socket reconnect failed")
		time.Sleep(wait)
	}
}

func (s *Socket) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		current := s.conn == conn
		s.mu.Unlock()
		if !current || s.closed.Load() {
			return
		}
		s.writeMu.Lock()
		err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
		s.writeMu.Unlock()
		if err != nil {
			// The read loop will observe the broken connection.
			return
		}
	}
}
