package handlers

import (
	"net/http"

	"staking/internal/config"
	"staking/internal/db"
	"staking/internal/middleware"
	"staking/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	stakes       StakeStore
	accruals     AccrualStore
	packages     PackageStore
	transactions TransactionStore
	admin        AdminStore
	audit        AuditStore
	service      StakeService
	runner       AccrualRunner
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, stakes StakeStore, accruals AccrualStore, packages PackageStore, transactions TransactionStore, admin AdminStore, audit AuditStore, service StakeService, runner AccrualRunner, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		stakes:       stakes,
		accruals:     accruals,
		packages:     packages,
		transactions: transactions,
		admin:        admin,
		audit:        audit,
		service:      service,
		runner:       runner,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Get("/packages", h.ListPackages)
	router.Post("/packages/custom/price", h.PriceCustomPackage)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/stakes", h.CreateStake)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/stakes", h.ListStakes)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/stakes/{id}", h.GetStake)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/account", h.GetAccount)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/transactions", h.ListTransactions)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/transactions/withdraw", h.Withdraw)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/referrals/claim", h.ClaimReferral)
	router.Get("/ws/events", h.WSEvents)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.admin, "CanViewUsers")).Get("/users", h.AdminListUsers)
		r.With(middleware.RequireAdmin(h.admin, "CanViewUsers")).Get("/accounts", h.AdminListAccounts)
		r.With(middleware.RequireAdmin(h.admin, "CanViewStakes")).Get("/stakes", h.AdminListStakes)
		r.With(middleware.RequireAdmin(h.admin, "CanViewStakes")).Get("/transactions", h.AdminListTransactions)
		r.With(middleware.RequireAdmin(h.admin, "CanManagePackages")).Post("/packages", h.AdminSetPackage)
		r.With(middleware.RequireAdmin(h.admin, "CanManagePackages")).Delete("/packages/{tier}", h.AdminDeactivatePackage)
		r.With(middleware.RequireAdmin(h.admin, "CanApproveDeposits")).Post("/deposits", h.AdminApproveDeposit)
		r.With(middleware.RequireAdmin(h.admin, "CanApproveDeposits")).Post("/referrals", h.AdminCreditReferral)
		r.With(middleware.RequireAdmin(h.admin, "CanRunAccrual")).Post("/accrual/run", h.AdminRunAccrual)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.admin, "CanViewStakes")).Get("/audit", h.ListAuditLogs)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
