package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	querybus "recipebook/application/queries/bus"
	"recipebook/infrastructure/config"
	"recipebook/interfaces/http/rest/handlers"
	"recipebook/interfaces/http/rest/middleware"
	"recipebook/pkg/auth"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	config     *config.Config
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	store      ports.Store
	authorizer ports.Authorizer
	limiter    auth.RateLimiter
	collector  *observability.Collector
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// Dependencies are the collaborators the router serves requests with.
// Collector and Tracer are optional.
type Dependencies struct {
	Config      *config.Config
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Store       ports.Store
	Authorizer  ports.Authorizer
	RateLimiter auth.RateLimiter
	Collector   *observability.Collector
	Tracer      *observability.Tracer
	Logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		config:     deps.Config,
		commandBus: deps.CommandBus,
		queryBus:   deps.QueryBus,
		store:      deps.Store,
		authorizer: deps.Authorizer,
		limiter:    deps.RateLimiter,
		collector:  deps.Collector,
		tracer:     deps.Tracer,
		logger:     deps.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.config.DebugErrors)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger, "/health", "/ready", "/metrics"))
	if rt.collector != nil {
		router.Use(rt.collector.Middleware)
	}
	if rt.tracer != nil {
		router.Use(rt.tracer.Middleware)
	}

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.AdminSecretHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	guard := middleware.NewAdminGuard(rt.authorizer, rt.limiter, errorHandler, rt.logger)
	recipeHandler := handlers.NewRecipeHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
	referenceHandler := handlers.NewReferenceHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
	pairingHandler := handlers.NewPairingHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
	adminHandler := handlers.NewAdminHandler(rt.commandBus, guard, errorHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.ListRecipes)
			r.Get("/{recipeID}", recipeHandler.GetRecipe)
			r.Get("/{recipeID}/view", recipeHandler.RecipeView)
		})

		r.Route("/pairings", func(r chi.Router) {
			r.Get("/", pairingHandler.ListPairings)
			r.Post("/", pairingHandler.SavePairing)
			r.Delete("/{pairingID}", pairingHandler.DeletePairing)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", adminHandler.Session)

			r.Group(func(r chi.Router) {
				r.Use(guard.Middleware)

				r.Post("/recipes", recipeHandler.AddRecipe)
				r.Patch("/recipes/{recipeID}", recipeHandler.UpdateRecipe)
				r.Delete("/recipes/{recipeID}", recipeHandler.RemoveRecipe)

				r.Get("/ingredients", referenceHandler.ListIngredients)
				r.Put("/ingredients", referenceHandler.SaveIngredient)

				r.Post("/clear", adminHandler.Clear)
				r.Post("/import", adminHandler.Import)

				r.Delete("/{kind}/unused", referenceHandler.RemoveUnused)
				r.Delete("/{kind}/{entityID}", referenceHandler.RemoveEntity)
			})
		})

		r.Get("/{kind}/names", referenceHandler.ListNames)
		r.Get("/{kind}/suggestions", referenceHandler.Suggestions)
		r.Get("/{kind}/unused", referenceHandler.ListUnused)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	_ = common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once storage answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := rt.store.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		_ = common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	_ = common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
