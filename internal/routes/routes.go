package routes

import (
	"net/http"

	"github.com/templui/calldesk/internal/app"
	"github.com/templui/calldesk/internal/handler"
	"github.com/templui/calldesk/internal/middleware"
	"github.com/templui/calldesk/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	users := handler.NewUserHandler(app.AuthService, app.UserService)
	lookups := handler.NewLookupHandler(app.LookupService)
	calls := handler.NewCallHandler(app.CallService, app.CommentService)
	attachments := handler.NewAttachmentHandler(app.AttachmentService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// Middleware
	auth := middleware.RequireIdentity(app.AuthService, app.PublicIdentity)
	rateLimited := middleware.RateLimit(app.AuthLimiter)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Uploaded files are served by stored name without a token
	mux.HandleFunc("GET /uploads/{filename}", attachments.Serve)
	mux.HandleFunc("GET /api/attachments/uploads/{filename}", attachments.Serve)

	// Credentials (rate limited)
	mux.Handle("POST /api/users/register", rateLimited(http.HandlerFunc(users.Register)))
	mux.Handle("POST /api/users/login", rateLimited(http.HandlerFunc(users.Login)))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Account & lookup lists
	mux.Handle("GET /api/users/profile", protected(users.Profile))
	mux.Handle("GET /api/users/dropdown-options", protected(lookups.DropdownOptions))
	mux.Handle("POST /api/users/contact-persons", protected(lookups.Add(model.LookupContactPerson)))
	mux.Handle("DELETE /api/users/contact-persons/{name}", protected(lookups.Delete(model.LookupContactPerson)))
	mux.Handle("POST /api/users/operators", protected(lookups.Add(model.LookupOperator)))
	mux.Handle("DELETE /api/users/operators/{name}", protected(lookups.Delete(model.LookupOperator)))

	// Calls
	mux.Handle("GET /api/calls", protected(calls.List))
	mux.Handle("POST /api/calls", protected(calls.Create))
	mux.Handle("GET /api/calls/stats", protected(calls.Stats))
	mux.Handle("PATCH /api/calls/{id}/status", protected(calls.UpdateStatus))
	mux.Handle("DELETE /api/calls/{id}", protected(calls.Delete))
	mux.Handle("POST /api/calls/{id}/comments", protected(calls.AddComment))

	// Attachments
	mux.Handle("POST /api/attachments/{commentId}", protected(attachments.Upload))
	mux.Handle("GET /api/attachments/comment/{commentId}", protected(attachments.List))
	mux.Handle("DELETE /api/attachments/{id}", protected(attachments.Delete))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
	)
}
