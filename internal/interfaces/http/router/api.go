package router

import (
	"path/filepath"

	_ "github.com/atelier/backend/docs"
	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the controllers mounted by NewEngine
type Handlers struct {
	Auth         *handler.AuthHandler
	Category     *handler.CategoryHandler
	Library      *handler.LibraryHandler
	Project      *handler.ProjectHandler
	Prescription *handler.PrescriptionHandler
	Document     *handler.DocumentHandler
	System       *handler.SystemHandler
}

// Options configure the middleware chain and the operational endpoints
type Options struct {
	Logger         *zap.Logger
	ServiceName    string
	TrustedProxies []string

	Tracing   bool
	Profiling bool
	// Metrics is nil when the scrape endpoint is disabled
	Metrics     *telemetry.HTTPMetrics
	MetricsPath string

	CORS          middleware.CORSConfig
	Security      middleware.SecurityConfig
	MaxBodySize   int64
	MaxUploadSize int64
	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *middleware.RateLimiter

	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist

	Swagger middleware.SwaggerConfig

	// UploadsRoot is the local storage root; uploads are served from its
	// uploads/ directory. Empty when files live in S3.
	UploadsRoot string
}

// NewEngine builds the gin engine with the full middleware chain and every route
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if opts.Tracing {
		engine.Use(middleware.Tracing(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: true}))
		engine.Use(middleware.SpanEnricher())
	}
	engine.Use(middleware.HTTPMetrics(opts.Metrics))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(opts.Security))
	engine.Use(middleware.CORS(opts.CORS))
	engine.Use(middleware.BodyLimit(opts.MaxBodySize, opts.MaxUploadSize))
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	engine.Use(middleware.Profiling(middleware.ProfilingConfig{
		Enabled:   opts.Profiling,
		SkipPaths: []string{"/health", metricsPath},
	}))

	engine.GET("/health", h.System.Health)
	if opts.Metrics != nil {
		engine.GET(metricsPath, gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.UploadsRoot != "" {
		engine.Static("/uploads", filepath.Join(opts.UploadsRoot, "uploads"))
	}
	engine.NoRoute(h.System.NotFound)

	r := NewRouter(engine, WithAPIVersion("v1"))
	base := r.BasePath()
	jwtAuth := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     opts.JWT,
		TokenBlacklist: opts.Blacklist,
		SkipPaths: []string{
			base + "/auth/register",
			base + "/auth/login",
			base + "/auth/refresh",
		},
		Logger: log,
	})
	r.Use(jwtAuth)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Register(authRoutes(h.Auth)).
		Register(categoryRoutes(h.Category)).
		Register(libraryRoutes(h.Library)).
		Register(projectRoutes(h.Project, h.Prescription, h.Document)).
		Register(spaceRoutes(h.Project, h.Document)).
		Register(prescriptionRoutes(h.Prescription, h.Document)).
		Register(fileRoutes(h.Document)).
		Register(systemRoutes(h.System))
	r.Setup()

	return engine
}

var (
	designers = middleware.RequireRoles(string(identity.RoleDesigner), string(identity.RoleAdmin))
	admins    = middleware.RequireRoles(string(identity.RoleAdmin))
)

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
	return g
}

func categoryRoutes(h *handler.CategoryHandler) *DomainGroup {
	g := NewDomainGroup("catalog", "/categories")
	g.GET("", h.List)
	g.POST("", designers, h.Create)
	g.GET("/tree", h.Tree)
	g.POST("/import", admins, h.Import)
	g.POST("/parents", admins, h.CreateParent)
	g.POST("/parents/:id/subcategories", admins, h.CreateSubCategory1)
	g.POST("/subcategories/:id/subcategories", admins, h.CreateSubCategory2)
	return g
}

func libraryRoutes(h *handler.LibraryHandler) *DomainGroup {
	g := NewDomainGroup("library", "/library")

	resources := g.Group("resources", "/resources")
	resources.GET("", h.ListResources)
	resources.POST("", designers, h.CreateResource)
	resources.POST("/import", designers, h.ImportResources)
	resources.GET("/:id", h.GetResource)
	resources.PATCH("/:id", designers, h.UpdateResource)
	resources.DELETE("/:id", designers, h.DeleteResource)

	favorites := g.Group("favorites", "/favorites")
	favorites.GET("", h.ListFavorites)
	favorites.POST("", h.SetFavorite)
	favorites.DELETE("/:resourceId", h.RemoveFavorite)
	return g
}

func projectRoutes(p *handler.ProjectHandler, rx *handler.PrescriptionHandler, d *handler.DocumentHandler) *DomainGroup {
	g := NewDomainGroup("project", "/projects")
	g.GET("", p.List)
	g.POST("", designers, p.Create)
	g.GET("/:id", p.Get)
	g.PATCH("/:id", p.Update)
	g.DELETE("/:id", p.Delete)

	g.GET("/:id/spaces", p.ListSpaces)
	g.POST("/:id/spaces", p.CreateSpace)

	g.GET("/:id/clients", p.ListClients)
	g.POST("/:id/clients", p.AddClient)
	g.DELETE("/:id/clients/:userId", p.RemoveClient)

	g.GET("/:id/prescriptions", rx.List)
	g.POST("/:id/prescriptions", rx.Create)
	g.POST("/:id/budget/recalculate", rx.RecalculateBudget)

	g.GET("/:id/files", d.ListProjectFiles)
	g.POST("/:id/files", d.UploadProjectFiles)
	return g
}

func spaceRoutes(p *handler.ProjectHandler, d *handler.DocumentHandler) *DomainGroup {
	g := NewDomainGroup("space", "/spaces")
	g.PATCH("/:id", p.UpdateSpace)
	g.DELETE("/:id", p.DeleteSpace)
	g.GET("/:id/files", d.ListSpaceFiles)
	g.POST("/:id/files", d.UploadSpaceFiles)
	return g
}

func prescriptionRoutes(h *handler.PrescriptionHandler, d *handler.DocumentHandler) *DomainGroup {
	g := NewDomainGroup("prescription", "/prescriptions")
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/approvals", h.ListApprovals)
	g.PUT("/:id/approval", h.SetApproval)
	g.GET("/:id/comments", h.ListComments)
	g.POST("/:id/comments", h.AddComment)
	g.GET("/:id/documents", d.ListPrescriptionDocuments)
	g.POST("/:id/documents", d.UploadPrescriptionDocuments)
	return g
}

func fileRoutes(h *handler.DocumentHandler) *DomainGroup {
	return NewDomainGroup("file", "/files").DELETE("/:id", h.Delete)
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").GET("/info", h.Info)
}
