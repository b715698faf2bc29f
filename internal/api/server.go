// Package api exposes the HTTP surface: the public intake endpoint and the
// admin review endpoints.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dharsanguruparan/IntakeDesk/internal/auth"
	"github.com/dharsanguruparan/IntakeDesk/internal/config"
	"github.com/dharsanguruparan/IntakeDesk/internal/model"
	"github.com/dharsanguruparan/IntakeDesk/internal/queue"
)

// SubmissionStore is the persistence surface the handlers need. The pgx
// repository implements it in production; tests use the in-memory store.
type SubmissionStore interface {
	Create(ctx context.Context, sub *model.Submission) error
	Get(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context) ([]*model.Submission, error)
	Update(ctx context.Context, id string, upd *model.SubmissionUpdate) error
	Delete(ctx context.Context, id string) error
}

// ObjectStore uploads attachments and deletes them by their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteByURL(ctx context.Context, fileURL string) error
}

// Enqueuer schedules background work.
type Enqueuer interface {
	EnqueueIndex(ctx context.Context, payload queue.IndexPayload) error
	EnqueueCleanup(ctx context.Context, payload queue.CleanupPayload) error
}

// Server hosts the HTTP handlers.
type Server struct {
	cfg    *config.Config
	store  SubmissionStore
	files  ObjectStore
	queue  Enqueuer
	tokens *auth.TokenSigner
	server *http.Server
	once   sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, store SubmissionStore, files ObjectStore, queueClient Enqueuer, tokens *auth.TokenSigner) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		files:  files,
		queue:  queueClient,
		tokens: tokens,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: s.routes(),
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Printf("api listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/submissions", s.handleSubmissions)
	mux.HandleFunc("/admin/login", s.handleAdminLogin)
	mux.HandleFunc("/admin/submissions", s.handleAdminSubmissions)
	mux.HandleFunc("/admin/submissions/", s.handleAdminSubmissionRoute)
	return corsMiddleware(loggingMiddleware(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	if s.cfg.AdminPassword == "" {
		respondError(w, http.StatusServiceUnavailable, "Admin login is not configured.")
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid login payload.")
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.AdminPassword)) != 1 {
		respondError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	token, expiresAt := s.tokens.Issue(time.Now())
	respondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// authorize guards the admin endpoints. When no admin password is configured
// the check is disabled, which keeps local development and tests simple.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.cfg.AdminPassword == "" {
		return true
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || !s.tokens.Validate(token, time.Now()) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type createResponse struct {
	ID      string            `json:"id"`
	Message string            `json:"message"`
	Data    *model.Submission `json:"data"`
}

type uploadResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

// respondServerError logs the underlying error and returns its message as the
// detail string, never the stack.
func respondServerError(w http.ResponseWriter, message string, err error) {
	log.Printf("%s: %v", message, err)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Message: message, Detail: err.Error()})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
