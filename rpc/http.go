package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"curvelaunch/core"
)

const (
	maxRequestBytes = 1 << 20 // 1 MiB
	writeRatePerSec = 5
	writeRateBurst  = 10
	limiterTTL      = 15 * time.Minute
)

// Server exposes the launch engine over JSON-RPC 2.0 on a single POST
// endpoint, with a websocket event stream alongside it. Administrative
// methods require the bearer token from CURVELAUNCH_RPC_TOKEN.
type Server struct {
	node      *core.Node
	authToken string

	mu       sync.Mutex
	limiters map[string]*sourceLimiter
}

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewServer constructs a server around the node facade.
func NewServer(node *core.Node) *Server {
	return &Server{
		node:      node,
		authToken: strings.TrimSpace(os.Getenv("CURVELAUNCH_RPC_TOKEN")),
		limiters:  make(map[string]*sourceLimiter),
	}
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/events", s.handleEventStream)
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr, blocking until the listener fails.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// allowSource applies a per-source token bucket to write methods.
func (s *Server) allowSource(source string) bool {
	if source == "" {
		source = "unknown"
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(s.limiters, key)
		}
	}
	entry, ok := s.limiters[source]
	if !ok {
		entry = &sourceLimiter{limiter: rate.NewLimiter(rate.Limit(writeRatePerSec), writeRateBurst)}
		s.limiters[source] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func clientSource(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			candidate := strings.TrimSpace(parts[0])
			if candidate != "" {
				return candidate
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

// handle decodes the JSON-RPC envelope and dispatches to the method handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	// Write methods are rate limited per source address.
	switch req.Method {
	case "launch_create", "launch_buy", "launch_sell":
		if !s.allowSource(clientSource(r)) {
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "rate limit exceeded", nil)
			return
		}
	}

	switch req.Method {
	case "launch_create":
		s.handleLaunchCreate(w, r, req)
	case "launch_buy":
		s.handleLaunchBuy(w, r, req)
	case "launch_sell":
		s.handleLaunchSell(w, r, req)
	case "launch_quoteBuy":
		s.handleQuoteBuy(w, r, req)
	case "launch_quoteSell":
		s.handleQuoteSell(w, r, req)
	case "launch_price":
		s.handlePrice(w, r, req)
	case "launch_token":
		s.handleToken(w, r, req)
	case "launch_tokenByAddress":
		s.handleTokenByAddress(w, r, req)
	case "launch_tokens":
		s.handleTokens(w, r, req)
	case "launch_balance":
		s.handleBalance(w, r, req)
	case "launch_params":
		s.handleParams(w, r, req)
	case "launch_delist":
		s.withAuth(w, r, req, s.handleDelist)
	case "launch_pause":
		s.withAuth(w, r, req, s.handlePause)
	case "launch_resume":
		s.withAuth(w, r, req, s.handleResume)
	case "launch_setFees":
		s.withAuth(w, r, req, s.handleSetFees)
	case "launch_setCurve":
		s.withAuth(w, r, req, s.handleSetCurve)
	case "launch_setAllocation":
		s.withAuth(w, r, req, s.handleSetAllocation)
	case "launch_setThreshold":
		s.withAuth(w, r, req, s.handleSetThreshold)
	case "launch_setTreasury":
		s.withAuth(w, r, req, s.handleSetTreasury)
	case "launch_setOverrides":
		s.withAuth(w, r, req, s.handleSetOverrides)
	case "launch_setFeeExempt":
		s.withAuth(w, r, req, s.handleSetFeeExempt)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) withAuth(w http.ResponseWriter, r *http.Request, req *RPCRequest, next handlerFunc) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	next(w, r, req)
}
