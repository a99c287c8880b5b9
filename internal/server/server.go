package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moimapp/moim/internal/auth"
	"github.com/moimapp/moim/internal/handler"
	"github.com/moimapp/moim/internal/ledger"
	"github.com/moimapp/moim/internal/middleware"
	"github.com/moimapp/moim/internal/store"
	ws "github.com/moimapp/moim/internal/websocket"
)

type Config struct {
	JWTSecret     string
	SecureCookies bool
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	jwtManager   *auth.JWTManager
	authH        *handler.AuthHandler
	groupH       *handler.GroupHandler
	memberH      *handler.MemberHandler
	mealH        *handler.MealHandler
	transactionH *handler.TransactionHandler
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, auth.SessionDuration)

	userStore := store.NewUserStore(db)
	groupStore := store.NewGroupStore(db)
	memberStore := store.NewMemberStore(db)
	mealStore := store.NewMealStore(db)
	txnStore := store.NewTransactionStore(db)

	lg := ledger.New(db)

	return &Server{
		db:           db,
		hub:          hub,
		jwtManager:   jwtManager,
		authH:        handler.NewAuthHandler(userStore, jwtManager, cfg.SecureCookies, logger.With("component", "auth")),
		groupH:       handler.NewGroupHandler(groupStore, lg, hub, logger.With("component", "group")),
		memberH:      handler.NewMemberHandler(groupStore, memberStore, lg, hub, logger.With("component", "member")),
		mealH:        handler.NewMealHandler(groupStore, mealStore, lg, hub, logger.With("component", "meal")),
		transactionH: handler.NewTransactionHandler(groupStore, memberStore, txnStore, lg, hub, logger.With("component", "transaction")),
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.Handler())

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.jwtManager)
	outerMux.Handle("/", authMiddleware(protectedMux))

	h := middleware.Metrics(outerMux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.Ping(); err != nil {
		s.logger.Error("health check", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Identity
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("PUT /api/auth/profile", s.authH.UpdateProfile)

	// Groups
	mux.HandleFunc("POST /api/groups", s.groupH.Create)
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("GET /api/groups/{id}", s.groupH.Get)
	mux.HandleFunc("PUT /api/groups/{id}", s.groupH.Rename)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Dissolve)
	mux.HandleFunc("GET /api/groups/{id}/summary", s.groupH.Summary)
	mux.HandleFunc("POST /api/groups/{id}/overhead/use", s.groupH.UseOverhead)

	// Members
	mux.HandleFunc("POST /api/groups/{id}/members", s.memberH.Add)
	mux.HandleFunc("GET /api/groups/{id}/members", s.memberH.List)
	mux.HandleFunc("PUT /api/members/{id}/active", s.memberH.SetActive)

	// Meals
	mux.HandleFunc("POST /api/groups/{id}/meals", s.mealH.Create)
	mux.HandleFunc("GET /api/groups/{id}/meals", s.mealH.List)
	mux.HandleFunc("GET /api/meals/{id}", s.mealH.Get)
	mux.HandleFunc("PUT /api/meals/{id}", s.mealH.Update)
	mux.HandleFunc("DELETE /api/meals/{id}", s.mealH.Delete)
	mux.HandleFunc("POST /api/meals/preview", s.mealH.Preview)

	// Transactions
	mux.HandleFunc("POST /api/members/{id}/deposits", s.transactionH.AddDeposit)
	mux.HandleFunc("GET /api/members/{id}/transactions", s.transactionH.ListByMember)
	mux.HandleFunc("GET /api/groups/{id}/transactions", s.transactionH.ListByGroup)
	mux.HandleFunc("PUT /api/transactions/{id}", s.transactionH.EditDeposit)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.transactionH.DeleteDeposit)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
