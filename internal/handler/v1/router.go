package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Auth         *AuthHandler
	Schedules    *ScheduleHandler
	Appointments *AppointmentHandler
	JWTManager   *auth.JWTManager
	Collector    *metrics.Collector
	Log          *zap.Logger
	CORS         config.CORSConfig
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logging(deps.Log))
	r.Use(Metrics(deps.Collector))
	r.Use(cors(deps.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", deps.Auth.Register)
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/refresh", deps.Auth.Refresh)
	}

	authed := api.Group("")
	authed.Use(Authenticate(deps.JWTManager))

	authed.POST("/auth/change-password", deps.Auth.ChangePassword)

	doctors := authed.Group("/doctors")
	{
		doctors.GET("", deps.Auth.ListDoctors)
		doctors.GET("/:id/slots", deps.Schedules.GetAvailableSlots)
		doctors.GET("/:id/schedules", deps.Schedules.ListSchedules)
		doctors.GET("/:id/appointments",
			RequireRoles(domain.RoleDoctor, domain.RoleAdmin),
			deps.Appointments.ListForDoctor)

		scheduleWrites := doctors.Group("", RequireRoles(domain.RoleDoctor, domain.RoleAdmin))
		{
			scheduleWrites.POST("/:id/schedules", deps.Schedules.SetSchedule)
			scheduleWrites.DELETE("/:id/schedules/:scheduleId", deps.Schedules.DeleteSchedule)
		}
	}

	appointments := authed.Group("/appointments")
	{
		appointments.POST("", deps.Appointments.Create)
		appointments.GET("/me", deps.Appointments.ListMine)
		appointments.GET("/:id", deps.Appointments.Get)
		appointments.PUT("/:id", deps.Appointments.Update)
		appointments.POST("/:id/cancel", deps.Appointments.Cancel)
		appointments.POST("/:id/complete",
			RequireRoles(domain.RoleDoctor, domain.RoleAdmin),
			deps.Appointments.Complete)
	}

	return r
}

func cors(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := int(cfg.MaxAge / time.Second)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (origins["*"] || origins[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
