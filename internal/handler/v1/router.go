package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carelink-api/internal/config"
	"carelink-api/internal/service"
	"carelink-api/pkg/auth"
	"carelink-api/pkg/metrics"
)

type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	JWTManager *auth.JWTManager
	Collector  *metrics.Collector

	AuthService    *service.AuthService
	PatientService *service.PatientService
	DoctorService  *service.DoctorService
	MappingService *service.MappingService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(Metrics(deps.Collector))
	r.Use(RateLimit(deps.Config.RateLimit))
	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.CORS.AllowedOrigins,
		AllowMethods: deps.Config.CORS.AllowedMethods,
		AllowHeaders: deps.Config.CORS.AllowedHeaders,
		MaxAge:       deps.Config.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthService, deps.Collector, deps.Log)
	patientHandler := NewPatientHandler(deps.PatientService, deps.Collector, deps.Log)
	doctorHandler := NewDoctorHandler(deps.DoctorService, deps.Collector, deps.Log)
	mappingHandler := NewMappingHandler(deps.MappingService, deps.Collector, deps.Log)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register/", authHandler.Register)
		authGroup.POST("/login/", authHandler.Login)
		authGroup.POST("/refresh/", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(AuthRequired(deps.JWTManager))
	{
		patients := protected.Group("/patients")
		{
			patients.GET("/", patientHandler.List)
			patients.POST("/", patientHandler.Create)
			patients.GET("/:id/", patientHandler.Get)
			patients.PUT("/:id/", patientHandler.Update)
			patients.PATCH("/:id/", patientHandler.Patch)
			patients.DELETE("/:id/", patientHandler.Delete)
		}

		doctors := protected.Group("/doctors")
		{
			doctors.GET("/", doctorHandler.List)
			doctors.POST("/", doctorHandler.Create)
			doctors.GET("/:id/", doctorHandler.Get)
			doctors.PUT("/:id/", doctorHandler.Update)
			doctors.PATCH("/:id/", doctorHandler.Patch)
			doctors.DELETE("/:id/", doctorHandler.Delete)
		}

		mappings := protected.Group("/mappings")
		{
			mappings.GET("/", mappingHandler.List)
			mappings.POST("/", mappingHandler.Create)
			mappings.GET("/patient/:patient_id/", mappingHandler.ByPatient)
			mappings.GET("/:id/", mappingHandler.Get)
			mappings.PUT("/:id/", mappingHandler.Update)
			mappings.PATCH("/:id/", mappingHandler.Update)
			mappings.DELETE("/:id/", mappingHandler.Delete)
		}
	}

	return r
}
