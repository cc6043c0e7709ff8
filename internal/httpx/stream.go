package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/you/go-dish-demand/internal/service"
)

// SubscribeSSEHandler streams the forecast of /sse/{dish} every interval.
func SubscribeSSEHandler(svc *service.DemandService, every time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dish := r.PathValue("dish")
		if dish == "" {
			writeError(w, http.StatusBadRequest, "use /sse/{dish}")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			res, _, err := svc.Predict(ctx, dish)
			if err != nil {
				fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
				flusher.Flush()
				return
			}
			payload, _ := json.Marshal(predictionBody(res))
			fmt.Fprintf(w, "event: forecast\ndata: %s\n\n", payload)
			flusher.Flush()

			select {
			case <-ctx.Done():
				slog.Debug("SSE client closed", "dish", dish)
				return
			case <-ticker.C:
			}
		}
	}
}

func newUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// SubscribeWSHandler is the websocket twin of SubscribeSSEHandler.
func SubscribeWSHandler(svc *service.DemandService, every time.Duration, origins []string) http.HandlerFunc {
	upgrader := newUpgrader(origins)
	return func(w http.ResponseWriter, r *http.Request) {
		dish := r.PathValue("dish")
		if dish == "" {
			writeError(w, http.StatusBadRequest, "use /ws/{dish}")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		// reads only notice the peer closing
		ctx := r.Context()
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			res, _, err := svc.Predict(ctx, dish)
			if err != nil {
				_ = conn.WriteJSON(errorResponse{Error: err.Error()})
				return
			}
			if err := conn.WriteJSON(predictionBody(res)); err != nil {
				slog.Debug("websocket write failed", "dish", dish, "err", err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-closed:
				return
			case <-ticker.C:
			}
		}
	}
}
