package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pk049/Email-agent/internal/agent"
	"github.com/pk049/Email-agent/internal/config"
	"github.com/pk049/Email-agent/internal/llm"
	"github.com/pk049/Email-agent/internal/logger"
	"github.com/pk049/Email-agent/internal/mailbox"
	"github.com/pk049/Email-agent/internal/ops"
	"github.com/pk049/Email-agent/internal/session"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	// The connector either carries the configured handle or withholds one;
	// operations then report "not logged in" as ordinary failures.
	var connector mailbox.Connector
	if cfg.Mailbox.AccessToken != "" {
		connector = mailbox.NewStaticConnector(mailbox.NewGmailClient(cfg.Mailbox.BaseURL, cfg.Mailbox.AccessToken))
	} else {
		logger.L.Warn("no mailbox access token configured; operations will report not logged in")
		connector = mailbox.NewDisconnected()
	}

	registry, err := ops.NewRegistry(ops.EmailOperations(connector)...)
	if err != nil {
		logger.L.Error("failed to build operation registry", "error", err)
		os.Exit(1)
	}

	store, err := session.NewStore(cfg.Store)
	if err != nil {
		logger.L.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	agentInstance := agent.New(llm.NewClient(cfg.LLM), *cfg, registry)
	manager := session.NewManager(agentInstance, store)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			http.Error(w, "expected JSON body with a message field", http.StatusBadRequest)
			return
		}
		logger.L.Info("chat request", "session_id", req.SessionID)

		id, reply, err := manager.HandleMessage(r.Context(), req.SessionID, req.Message)
		if err != nil {
			logger.L.Error("turn failed", "session_id", id, "error", err)
			if errors.Is(err, agent.ErrToolCycleBudget) {
				http.Error(w, "the request needed more tool cycles than allowed", http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "failed to process request", http.StatusInternalServerError)
			return
		}
		writeJSON(w, chatResponse{SessionID: id, Reply: reply})
	})

	mux.HandleFunc("POST /reset", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			http.Error(w, "expected JSON body with a session_id field", http.StatusBadRequest)
			return
		}
		newID := manager.Reset(r.Context(), req.SessionID)
		writeJSON(w, chatResponse{SessionID: newID})
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session_id")
		if id == "" {
			http.Error(w, "session_id query parameter required", http.StatusBadRequest)
			return
		}
		s, err := manager.History(r.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "failed to load session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, s)
	})

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: serverAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("starting server", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Best-effort persistence on the way out, mirroring the snapshot on
	// every completed turn.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Warn("server shutdown", "error", err)
	}
	manager.Shutdown(shutdownCtx)
	if err := store.Close(); err != nil {
		logger.L.Warn("store close", "error", err)
	}
	logger.L.Info("shutdown complete")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warn("response encode failed", "error", err)
	}
}
