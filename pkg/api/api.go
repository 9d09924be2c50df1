// Package api wires the broker's six operations onto an HTTP+JSON RPC
// surface with gorilla/mux, the teacher's routing library.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"litemq/internal/broker"
	"litemq/pkg/logger"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// debugPayload renders payload as a string for a debug log line only when
// it decodes as valid UTF-8, per the original's operation-logging
// behavior (original_source/src/lib.rs) — never logged at default
// verbosity since payloads are opaque bytes, not text, to the broker.
func debugPayload(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}
	return "<binary>"
}

// NewRouter builds the full RPC surface: health, enqueue, dequeue, length,
// purge, flush.
func NewRouter(b *broker.Broker) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/health", healthHandler(b)).Methods(http.MethodGet)
	r.HandleFunc("/v1/queues/{name}/messages", enqueueHandler(b)).Methods(http.MethodPost)
	r.HandleFunc("/v1/queues/{name}/messages/next", dequeueHandler(b)).Methods(http.MethodGet)
	r.HandleFunc("/v1/queues/{name}/length", lengthHandler(b)).Methods(http.MethodGet)
	r.HandleFunc("/v1/queues/{name}/purge", purgeHandler(b)).Methods(http.MethodPost)
	r.HandleFunc("/v1/flush", flushHandler(b)).Methods(http.MethodPost)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}

func healthHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := b.Health(); err != nil {
			jsonError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"queues":        len(b.Names()),
			"data_dir_size": humanize.Bytes(b.DataDirSize()),
		})
	}
}

func enqueueHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		var req struct {
			DataB64 string `json:"data_b64"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		payload, err := base64.StdEncoding.DecodeString(req.DataB64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "data_b64 is not valid base64")
			return
		}
		n, err := b.Enqueue(name, payload)
		if err != nil {
			logger.Error("rpc_enqueue_failed", "queue", name, "error", err)
			jsonError(w, http.StatusInternalServerError, "enqueue failed")
			return
		}
		logger.Debug("rpc_enqueue", "queue", name, "payload", debugPayload(payload))
		writeJSON(w, http.StatusOK, map[string]int64{"length": n})
	}
}

func dequeueHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		ctx := r.Context()
		if v := r.URL.Query().Get("timeout_ms"); v != "" {
			if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
				defer cancel()
			}
		}

		status, payload, err := b.Dequeue(ctx, name)
		if err != nil {
			logger.Error("rpc_dequeue_failed", "queue", name, "error", err)
			jsonError(w, http.StatusInternalServerError, "dequeue failed")
			return
		}
		if status == broker.Unavailable {
			jsonError(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		logger.Debug("rpc_dequeue", "queue", name, "payload", debugPayload(payload))
		writeJSON(w, http.StatusOK, map[string]string{"data_b64": base64.StdEncoding.EncodeToString(payload)})
	}
}

func lengthHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		writeJSON(w, http.StatusOK, map[string]int64{"length": b.Length(name)})
	}
}

func purgeHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		writeJSON(w, http.StatusOK, map[string]int64{"length": b.Purge(name)})
	}
}

func flushHandler(b *broker.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.Flush()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
