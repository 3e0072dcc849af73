// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/enviro_collector/internal/config"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the page is served from the Pi itself
	},
}

const wsWriteTimeout = 5 * time.Second

// statusHub keeps the last status message and fans it out to WebSocket
// clients. Writes to a conn happen only while holding mu.
type statusHub struct {
	mu      sync.Mutex
	last    status.Message
	have    bool
	clients map[*websocket.Conn]struct{}
	logger  *slog.Logger
}

func newStatusHub(logger *slog.Logger) *statusHub {
	return &statusHub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (h *statusHub) update(m status.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = m
	h.have = true
	for conn := range h.clients {
		if err := h.send(conn, m); err != nil {
			h.logger.Debug("web: dropping websocket client", "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *statusHub) send(conn *websocket.Conn, m status.Message) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(m)
}

func (h *statusHub) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last, have := h.last, h.have
	h.mu.Unlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		h.logger.Warn("web: json encode error", "error", err)
	}
}

func (h *statusHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("web: websocket upgrade error", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.have {
		if err := h.send(conn, h.last); err != nil {
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.mu.Unlock()

	// Drain until the browser goes away; clients never send anything.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("web: websocket error", "error", err)
			}
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *statusHub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("/ws", h.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb serves the latest collector status over HTTP and WebSocket.
func RunWeb(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := connectSubscriber(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	hub := newStatusHub(logger)
	if err := status.Subscribe(client, cfg.TopicStatus, logger, hub.update); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           hub.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
