package handlers

import (
	"washops/internal/config"
	"washops/internal/repositories"
	"washops/internal/scanner"
	"washops/internal/services"
)

// Deps are the long-lived engine components the handlers drive. Wired once
// at startup; the session, registry, and scanner are stateful singletons per
// operator console process.
type Deps struct {
	Env      config.Env
	Scanner  *scanner.Manager
	Verify   *services.VerifyService
	Session  *services.SessionService
	Registry *services.Registry
	History  *services.HistoryService
	Docs     services.DocsService
	Audit    repositories.VerificationRepository
}

var deps Deps

// Init wires the handler package. Must be called before the router serves.
func Init(d Deps) {
	deps = d
}
