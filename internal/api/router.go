package api

import (
	"net/http"

	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/traceback"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(svc *traceback.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: svc.DB, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: svc.DB}
	imagesHandler := &ImagesHandler{DB: svc.DB, Now: svc.Now, NewID: svc.NewID}
	itemsHandler := &ItemsHandler{Svc: svc}
	claimsHandler := &ClaimsHandler{Svc: svc}
	tokensHandler := &TokensHandler{Svc: svc}
	adminHandler := &AdminHandler{Svc: svc}

	authMW := AuthMiddleware(jwtSecret, svc.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSecurity := RequireRole(model.RoleSecurity)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }
	security := func(h http.HandlerFunc) http.Handler { return authMW(requireSecurity(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Images and claim form questions.
	mux.Handle("POST /api/images", authed(imagesHandler.Upload))
	mux.Handle("GET /api/images/{id}", authed(imagesHandler.Get))
	mux.Handle("GET /api/categories/{category}/questions", authed(claimsHandler.Questions))

	// Items and matches.
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("GET /api/items/{id}/matches", authed(itemsHandler.Matches))
	mux.Handle("POST /api/items/{id}/archive", admin(itemsHandler.Archive))
	mux.Handle("POST /api/matches", admin(itemsHandler.RecordMatch))

	// Claims: residents submit and follow their own, admins decide.
	mux.Handle("POST /api/claims", authed(claimsHandler.Create))
	mux.Handle("GET /api/claims", security(claimsHandler.List))
	mux.Handle("GET /api/claims/{id}", authed(claimsHandler.Get))
	mux.Handle("POST /api/claims/{id}/decision", admin(claimsHandler.Decide))
	mux.Handle("POST /api/claims/{id}/info", authed(claimsHandler.RespondToInfo))

	// Pickup tokens (security desk).
	mux.Handle("GET /api/tokens/{id}", security(tokensHandler.Validate))
	mux.Handle("POST /api/tokens/{id}/redeem", security(tokensHandler.Redeem))

	// Dashboard and administration.
	mux.Handle("GET /api/stats", authed(adminHandler.Stats))
	mux.Handle("GET /api/audit", admin(adminHandler.Audit))
	mux.Handle("POST /api/sweep", admin(adminHandler.Sweep))

	return mux
}
