package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docrag/internal/auth"
	"docrag/internal/http/middleware"
	"docrag/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Auth       service.AuthService
	Workspaces service.WorkspaceService
	Documents  service.DocumentService
	Query      service.QueryService
	Members    service.MembershipService
	Audit      service.AuditService
}

// Options carries the router's infrastructure dependencies.
type Options struct {
	DB            Pinger
	Authenticator auth.Authenticator
	// AuthLimiter throttles /auth; nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the services.
func RegisterRoutes(app *fiber.App, svc Services, opts Options) {
	app.Get("/health", HealthCheck(opts.DB))
	app.Get("/healthz", LivenessProbe())
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	authRoutes := app.Group("/auth")
	if opts.AuthLimiter != nil {
		authRoutes.Use(opts.AuthLimiter.Handler())
	}
	authRoutes.Post("/register", Register(svc.Auth))
	authRoutes.Post("/login", Login(svc.Auth))

	ws := app.Group("/workspaces", middleware.Authenticate(opts.Authenticator))
	ws.Get("", ListWorkspaces(svc.Workspaces))
	ws.Post("", CreateWorkspace(svc.Workspaces))

	ws.Post("/:workspace_id/ingest/demo", IngestDemo(svc.Documents))
	ws.Post("/:workspace_id/query", Query(svc.Query))

	ws.Get("/:workspace_id/documents", ListDocuments(svc.Documents))
	ws.Get("/:workspace_id/documents/:document_id", GetDocument(svc.Documents))
	ws.Patch("/:workspace_id/documents/:document_id/classification", UpdateClassification(svc.Documents))

	ws.Get("/:workspace_id/members", ListMembers(svc.Members))
	ws.Post("/:workspace_id/members", AddMember(svc.Members))
	ws.Patch("/:workspace_id/members/:user_id", UpdateMemberRole(svc.Members))
	ws.Delete("/:workspace_id/members/:user_id", RemoveMember(svc.Members))

	ws.Get("/:workspace_id/audit", ListAudit(svc.Audit))
}
