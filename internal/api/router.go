package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *reconcile.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &FoundItemsHandler{DB: db, Service: svc}
	ticketsHandler := &TicketsHandler{Service: svc}
	claimsHandler := &ClaimsHandler{Service: svc}
	handInsHandler := &HandInsHandler{DB: db, Service: svc}
	adminHandler := &AdminHandler{Service: svc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff, model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/handins", handInsHandler.Submit)
	mux.HandleFunc("GET /api/found-items", itemsHandler.List)
	mux.HandleFunc("GET /api/found-items/{id}", itemsHandler.Get)

	// Session.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Students and staff.
	mux.Handle("POST /api/tickets", authMW(http.HandlerFunc(ticketsHandler.Create)))
	mux.Handle("GET /api/tickets", authMW(http.HandlerFunc(ticketsHandler.List)))
	mux.Handle("GET /api/tickets/{id}", authMW(http.HandlerFunc(ticketsHandler.Get)))
	mux.Handle("POST /api/found-items/{id}/claims", authMW(http.HandlerFunc(itemsHandler.Claim)))
	mux.Handle("GET /api/claims", authMW(http.HandlerFunc(claimsHandler.List)))

	// Staff.
	mux.Handle("GET /api/tickets/{id}/matches", authMW(requireStaff(http.HandlerFunc(ticketsHandler.Matches))))
	mux.Handle("POST /api/tickets/{id}/match/{item_id}", authMW(requireStaff(http.HandlerFunc(ticketsHandler.ConfirmMatch))))
	mux.Handle("POST /api/found-items", authMW(requireStaff(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("PUT /api/found-items/{id}", authMW(requireStaff(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("POST /api/claims/{id}/approve", authMW(requireStaff(http.HandlerFunc(claimsHandler.Approve))))
	mux.Handle("POST /api/claims/{id}/reject", authMW(requireStaff(http.HandlerFunc(claimsHandler.Reject))))
	mux.Handle("GET /api/handins", authMW(requireStaff(http.HandlerFunc(handInsHandler.List))))
	mux.Handle("POST /api/handins/{id}/receive", authMW(requireStaff(http.HandlerFunc(handInsHandler.Receive))))
	mux.Handle("GET /api/dashboard", authMW(requireStaff(http.HandlerFunc(adminHandler.Dashboard))))

	// Admin.
	mux.Handle("GET /api/audit", authMW(requireAdmin(http.HandlerFunc(adminHandler.Audit))))
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
