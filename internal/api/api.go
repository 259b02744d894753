// Package api assembles the query API: the catalog domain system mounted
// behind logging and CORS middleware.
package api

import (
	"net/http"

	"github.com/mlavergne/stratify/internal/catalog"
	"github.com/mlavergne/stratify/internal/config"
	"github.com/mlavergne/stratify/internal/infrastructure"
	"github.com/mlavergne/stratify/pkg/middleware"
)

// New builds the API handler with all domain routes and middleware applied.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) http.Handler {
	logger := infra.Logger.With("module", "api")

	catalogSystem := catalog.New(
		infra.Database.Connection(),
		logger,
		cfg.API.Pagination,
	)

	mux := http.NewServeMux()
	catalogSystem.Handler().Register(mux, cfg.API.BasePath)

	stack := middleware.New()
	stack.Use(middleware.CORS(&cfg.API.CORS))
	stack.Use(middleware.Logger(logger))

	return stack.Apply(mux)
}
