package routes

import (
	"time"

	"apiary-api-server/config"
	"apiary-api-server/internal/api/handlers"
	"apiary-api-server/internal/api/middleware"
	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

// SetupRouter wires the handlers onto a gin engine.
func SetupRouter(
	cfg config.Config,
	svc *apiary.Service,
	schema graphql.Schema,
	wsHub *socket.Hub,
	log zerolog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	router.Use(middleware.Identify(cfg.JWT.Secret, log))
	if cfg.Server.MaxPhotoBytes > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxPhotoBytes
	}

	graphqlHandler := &handlers.GraphQLHandler{Schema: schema}
	photoHandler := &handlers.PhotoHandler{Service: svc}
	healthHandler := &handlers.HealthHandler{Service: svc}
	userHandler := &handlers.UserHandler{}
	webSocketHandler := &handlers.WebSocketHandler{
		Hub:          wsHub,
		JWTSecret:    cfg.JWT.Secret,
		RequireToken: cfg.JWT.Enforce,
		Log:          log,
	}

	router.GET("/healthz", healthHandler.Live)
	router.GET("/readyz", healthHandler.Ready)
	router.POST("/graphql", graphqlHandler.Serve)
	router.GET("/graphql", graphqlHandler.Serve)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)
		apiV1.POST("/graphql", graphqlHandler.Serve)
		apiV1.GET("/me", userHandler.Me)

		colmenas := apiV1.Group("/colmenas")
		{
			colmenas.PUT("/:id/foto", photoHandler.Upload)
			colmenas.DELETE("/:id/foto", photoHandler.Delete)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
