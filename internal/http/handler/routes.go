package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/auth"
	"casedocs/internal/config"
	"casedocs/internal/http/middleware"
	"casedocs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay free of business logic; the session gate guards everything under
// /documents and /dashboard.
func RegisterRoutes(app *fiber.App, db *sql.DB, a auth.Authenticator, docSvc service.DocumentService, sessionCfg config.SessionConfig) {
	// Health probes
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Entry/register views: credential round trips to the identity provider
	authGroup := app.Group("/auth")
	authGroup.Post("/login", Login(a, sessionCfg))
	authGroup.Post("/register", Register(a, sessionCfg))
	authGroup.Post("/logout", Logout(a, sessionCfg))
	authGroup.Get("/session", CurrentSession(a, sessionCfg))

	gate := middleware.SessionRequired(a, sessionCfg.CookieName)

	docs := app.Group("/documents", gate)
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/", CreateDocument(docSvc))
	docs.Get("/sources", ListSources(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Put("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
	docs.Get("/:id/file", DownloadDocument(docSvc))

	app.Get("/dashboard/stats", gate, DashboardStats(docSvc))
}
