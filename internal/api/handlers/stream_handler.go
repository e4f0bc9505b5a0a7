package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/realtime"
)

// DefaultHeartbeat is used when no heartbeat interval is configured.
const DefaultHeartbeat = 15 * time.Second

// DashboardLister loads the cards sent when a client connects.
type DashboardLister interface {
	ListForDashboard(ctx context.Context) ([]models.ResourceCard, error)
}

// StreamHandler serves hub events as Server-Sent Events.
type StreamHandler struct {
	hub       *realtime.Hub
	svc       DashboardLister
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewStreamHandler creates a handler. A non-positive heartbeat means
// DefaultHeartbeat.
func NewStreamHandler(hub *realtime.Hub, svc DashboardLister, heartbeat time.Duration, logger *slog.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{hub: hub, svc: svc, heartbeat: heartbeat, logger: logger}
}

// Stream sends initialState followed by every hub event until the client
// disconnects or the hub drops the subscription.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	// Subscribe before loading so nothing published in between is lost.
	id, events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	cards, err := h.svc.ListForDashboard(ctx)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	seq := 0
	send := func(evt realtime.Event) error {
		seq++
		if err := writeEvent(w, seq, evt); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(realtime.NewEvent(realtime.EventInitialState, cards)); err != nil {
		return
	}
	h.logger.Debug("stream client connected", "subscriber", id, "remote", r.RemoteAddr)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("stream client disconnected", "subscriber", id)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := send(evt); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, seq int, evt realtime.Event) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", evt.Type, err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, evt.Type, data)
	return err
}
