// Package server streams pool query results to websocket clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gravex-pools/internal/observability"
	"gravex-pools/internal/poolquery"
)

// Defaults for stream connections.
const (
	DefaultPingInterval = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultPongTimeout  = 60 * time.Second
)

// QueryHook runs alongside each stream for the lifetime of ctx.
type QueryHook func(ctx context.Context, q *poolquery.Query)

// Server serves /ws/pools, /health and /metrics.
type Server struct {
	engine       *poolquery.Engine
	defaults     poolquery.Params
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	writeTimeout time.Duration
	pongTimeout  time.Duration
	hook         QueryHook
}

// Option configures Server.
type Option func(*Server)

// WithDefaults sets the params a request starts from.
func WithDefaults(p poolquery.Params) Option {
	return func(s *Server) {
		s.defaults = p
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPingInterval sets how often idle streams are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		s.pingInterval = d
	}
}

// WithWriteTimeout sets the deadline of each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// WithQueryHook runs hook for every opened stream query.
func WithQueryHook(hook QueryHook) Option {
	return func(s *Server) {
		s.hook = hook
	}
}

// New creates a server opening queries on engine.
func New(engine *poolquery.Engine, opts ...Option) *Server {
	s := &Server{
		engine:       engine,
		defaults:     poolquery.DefaultParams(),
		logger:       zap.NewNop(),
		pingInterval: DefaultPingInterval,
		writeTimeout: DefaultWriteTimeout,
		pongTimeout:  DefaultPongTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/ws/pools", s.handlePools)

	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r.URL.Query(), s.defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q, err := s.engine.Open(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer q.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	observability.AddStreamSubscribers(1)
	defer observability.AddStreamSubscribers(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := s.logger.With(zap.String("key", q.Key()), zap.String("remote", r.RemoteAddr))
	logger.Info("stream opened")

	var wg sync.WaitGroup
	if s.hook != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.hook(ctx, q)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := s.writeLoop(ctx, conn, q); err != nil && ctx.Err() == nil {
			logger.Debug("stream write stopped", zap.Error(err))
			// Unblock readLoop.
			conn.Close()
		}
	}()

	s.readLoop(ctx, conn, q, &wg, logger)
	cancel()
	q.Close()
	wg.Wait()

	logger.Info("stream closed")
}

// readLoop applies client operations until the connection fails. Focus and
// refresh wait for their requests, so they run on their own goroutine and
// at most one of them is in flight; ops arriving meanwhile are dropped.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, q *poolquery.Query, wg *sync.WaitGroup, logger *zap.Logger) {
	var busy atomic.Bool
	revalidate := func(op string, fn func()) {
		if !busy.CompareAndSwap(false, true) {
			logger.Debug("stream op dropped", zap.String("op", op))
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer busy.Store(false)
			fn()
		}()
	}

	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("stream read failed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))

		switch msg.Op {
		case OpLoadMore:
			q.LoadMore()
		case OpFocus:
			revalidate(msg.Op, q.Focus)
		case OpRefresh:
			revalidate(msg.Op, func() { q.Mutate(nil, true) })
		default:
			logger.Debug("unknown stream op", zap.String("op", msg.Op))
		}
	}
}

// writeLoop sends the current result, then one frame per update. It is the
// only writer of conn.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, q *poolquery.Query) error {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	if err := s.writeFrame(conn, q); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		case _, ok := <-q.Updates():
			if !ok {
				return nil
			}
			if err := s.writeFrame(conn, q); err != nil {
				return err
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, q *poolquery.Query) error {
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return conn.WriteJSON(NewFrame(q.Result()))
}
