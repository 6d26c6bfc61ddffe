package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/metrics"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	livePingInterval = 30 * time.Second
	liveWriteTimeout = 10 * time.Second
)

// liveMessage is what a live query subscriber receives: the complete,
// ordered result set after each change.
type liveMessage struct {
	Type   string         `json:"type"`
	Issues []models.Issue `json:"issues"`
	Error  string         `json:"error,omitempty"`
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
	}
}

// LiveIssues upgrades to a websocket and streams the result of the query
// given in the URL: once on connect and again after every issue change.
// The subscription ends when the client closes the socket; reconnecting
// starts a new one.
func (h *IssueController) LiveIssues(c *gin.Context) {
	filter, sortKey := parseIssueQuery(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("Failed to upgrade live issues websocket", "error", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := h.notifier.Subscribe(ctx)
	if err != nil {
		slog.Error("Failed to subscribe to issue events", "error", err)
		h.write(ws, liveMessage{Type: "error", Error: "Live updates unavailable"})
		return
	}

	metrics.LiveSubscriptions.Inc()
	defer metrics.LiveSubscriptions.Dec()

	// the reader only exists to notice the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.sendSnapshot(ctx, ws, filter, sortKey) {
		return
	}

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if !h.sendSnapshot(ctx, ws, filter, sortKey) {
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *IssueController) sendSnapshot(ctx context.Context, ws *websocket.Conn, filter store.IssueFilter, sortKey store.SortKey) bool {
	qctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	issues, err := h.issues.Query(qctx, filter, sortKey)
	metrics.IssueOperations.WithLabelValues("live_query", metrics.Result(err)).Inc()
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Error("Live issue query failed", "error", err)
		return h.write(ws, liveMessage{Type: "error", Error: "Failed to retrieve issues"})
	}
	return h.write(ws, liveMessage{Type: "snapshot", Issues: issues})
}

func (h *IssueController) write(ws *websocket.Conn, msg liveMessage) bool {
	_ = ws.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		slog.Debug("Live issues client gone", "error", err)
		return false
	}
	return true
}
