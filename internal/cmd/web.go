package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gyroflick/gyroflick/feed"
)

// Web serves the fused pose over HTTP: a JSON snapshot endpoint plus a
// WebSocket stream, fed by the pose topic of a running MQTT source.
type Web struct {
	Addr       string          `help:"HTTP listen address." default:":8080" env:"GYROFLICK_WEB_ADDR"`
	MQTTConfig feed.MQTTConfig `embed:"" prefix:"mqtt."`
}

type poseHub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	latest  feed.Pose
	haveOne bool
	subs    map[chan feed.Pose]struct{}
}

func newPoseHub(logger *slog.Logger) *poseHub {
	return &poseHub{
		logger: logger,
		subs:   make(map[chan feed.Pose]struct{}),
	}
}

func (h *poseHub) publish(pose feed.Pose) {
	h.mu.Lock()
	h.latest = pose
	h.haveOne = true
	for ch := range h.subs {
		select {
		case ch <- pose:
		default:
			// Slow consumer; drop the update rather than block the feed.
		}
	}
	h.mu.Unlock()
}

func (h *poseHub) snapshot() (feed.Pose, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.haveOne
}

func (h *poseHub) subscribe() chan feed.Pose {
	ch := make(chan feed.Pose, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *poseHub) unsubscribe(ch chan feed.Pose) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// Run is called by kong when the web command is executed.
func (w *Web) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := newPoseHub(logger)

	subErrCh := make(chan error, 1)
	go func() {
		subErrCh <- feed.SubscribePose(ctx, w.MQTTConfig, "gyroflick-web", hub.publish)
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pose", func(rw http.ResponseWriter, r *http.Request) {
		pose, ok := hub.snapshot()
		if !ok {
			http.Error(rw, "no pose received yet", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(pose)
	})
	mux.HandleFunc("POST /api/recentre", func(rw http.ResponseWriter, r *http.Request) {
		if err := feed.PublishRecentre(w.MQTTConfig, "gyroflick-web-recentre"); err != nil {
			logger.Error("recentre failed", "error", err)
			http.Error(rw, err.Error(), http.StatusBadGateway)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /ws", func(rw http.ResponseWriter, r *http.Request) {
		w.serveWS(hub, rw, r)
	})

	srv := &http.Server{Addr: w.Addr, Handler: mux}

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- srv.ListenAndServe()
	}()
	logger.Info("web server listening", "addr", w.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-httpErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-subErrCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

func (w *Web) serveWS(hub *poseHub, rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		hub.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	// Discard client messages, but keep reading so pongs and closes are
	// processed.
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case pose := <-ch:
			if err := conn.WriteJSON(pose); err != nil {
				return
			}
		}
	}
}
