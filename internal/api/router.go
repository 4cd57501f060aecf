package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/announcements"
	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/cache"
	"github.com/prisonrp/ruleswiki/internal/categories"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/notify"
	"github.com/prisonrp/ruleswiki/internal/rules"
	"github.com/prisonrp/ruleswiki/internal/staff"
	"github.com/prisonrp/ruleswiki/pkg/config"
	"github.com/prisonrp/ruleswiki/pkg/logging"
	"github.com/prisonrp/ruleswiki/pkg/telemetry"
)

// Router wires services to HTTP routes
type Router struct {
	database      *db.DB
	cache         *cache.Cache
	categories    *categories.Service
	rules         *rules.Service
	announcements *announcements.Service
	staff         *staff.Service
	recorder      *audit.Recorder
	staffRepo     *db.StaffUserRepository
	authCfg       *config.AuthConfig
	logger        *zap.Logger
}

// NewRouter creates a new API router, constructing the repositories and
// services over the shared database handle.
func NewRouter(database *db.DB, redisCache *cache.Cache, authCfg *config.AuthConfig, notifier notify.Notifier) *Router {
	repo := db.NewRepository(database.DB)

	categoryRepo := db.NewCategoryRepository(repo)
	ruleRepo := db.NewRuleRepository(repo)
	refRepo := db.NewCrossReferenceRepository(repo)
	announcementRepo := db.NewAnnouncementRepository(repo)
	staffRepo := db.NewStaffUserRepository(repo)
	activityRepo := db.NewActivityLogRepository(repo)

	recorder := audit.NewRecorder(activityRepo)

	return &Router{
		database:      database,
		cache:         redisCache,
		categories:    categories.NewService(categoryRepo, recorder),
		rules:         rules.NewService(ruleRepo, refRepo, categoryRepo, recorder, notifier),
		announcements: announcements.NewService(announcementRepo, recorder, notifier),
		staff:         staff.NewService(staffRepo, recorder),
		recorder:      recorder,
		staffRepo:     staffRepo,
		authCfg:       authCfg,
		logger:        logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(requestID(), tracing())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Prometheus scrape target; the otel exporter feeds the default registry
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		// Public site
		api.GET("/categories", r.listPublicCategories)
		api.GET("/rules", r.listPublicRules)
		api.GET("/rules/:id", r.getPublicRule)
		api.GET("/announcements", r.listPublicAnnouncements)

		api.POST("/auth/token", r.issueToken)

		// Cross-references are managed from the rule editor
		refs := api.Group("/rules/:id/cross-references", r.requireStaff())
		{
			refs.GET("", r.listCrossReferences)
			refs.POST("", r.addCrossReference)
			refs.DELETE("/:refId", r.removeCrossReference)
		}

		// Staff dashboard
		st := api.Group("/staff", r.requireStaff())
		{
			st.GET("/rules", r.listStaffRules)
			st.POST("/rules", r.createRule)
			st.PUT("/rules/:id", r.updateRule)
			st.DELETE("/rules/:id", r.deleteRule)
			st.PUT("/rules/:id/approve", r.approveRule)
			st.PUT("/rules/:id/reject", r.rejectRule)

			st.GET("/categories", r.listStaffCategories)
			st.POST("/categories", r.createCategory)
			st.PUT("/categories/:id", r.updateCategory)
			st.DELETE("/categories/:id", r.deleteCategory)
			st.POST("/categories/reorder", r.reorderCategories)

			st.GET("/announcements", r.listStaffAnnouncements)
			st.POST("/announcements", r.createAnnouncement)
			st.PUT("/announcements/:id", r.updateAnnouncement)
			st.DELETE("/announcements/:id", r.deleteAnnouncement)
			st.PUT("/announcements/:id/approve", r.approveAnnouncement)
			st.PUT("/announcements/:id/reject", r.rejectAnnouncement)

			st.GET("/users", r.listStaffUsers)
			st.POST("/users", r.createStaffUser)
			st.PUT("/users/:id", r.updateStaffUser)
			st.DELETE("/users/:id", r.deactivateStaffUser)

			st.GET("/activity", r.listActivity)
		}
	}
}

// requestID attaches a request id to every response for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// tracing opens a span per request and propagates its context to the
// handlers, so service and repository work nests under the route span.
func tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			name = c.Request.Method + " unmatched"
		}
		ctx, span := telemetry.StartSpan(c.Request.Context(), name)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.End()
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.database.Health(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "unavailable", "service": "ruleswiki-api"})
		return
	}
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "ruleswiki-api",
	})
}

// invalidatePublicCache drops cached public reads after a staff write.
func (r *Router) invalidatePublicCache() {
	if err := r.cache.DeleteByPrefix("public:"); err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("Failed to invalidate public cache", zap.Error(err))
	}
}
