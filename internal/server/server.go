package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/config"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/authz"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/middleware"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/share"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/stats"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *gin.Engine
	config *config.Config
}

type handlers struct {
	auth   types.Authorizer
	db     store.Store
	shares *share.Engine
	media  *authz.Decision
	stat   *stats.Statistic
}

func New(config *config.Config, database store.Store, authenticator types.Authorizer, shares *share.Engine) (*Server, error) {
	server := &Server{
		config: config,
	}
	if err := server.Init(database, authenticator, shares); err != nil {
		return nil, err
	}

	return server, nil
}

func (s *Server) Init(database store.Store, authenticator types.Authorizer, shares *share.Engine) error {
	router := gin.Default()
	handler := &handlers{
		auth:   authenticator,
		db:     database,
		shares: shares,
		media:  authz.NewDecision(authenticator, database, shares),
	}

	if s.config.Debug {
		router.Use(gin.Recovery())
	}

	if s.config.AllowedOrigins != nil && s.config.AllowedMethods != nil {
		allowAllOrigins := len(s.config.AllowedOrigins) == 1 && s.config.AllowedOrigins[0] == "*"
		allowedOrigins := s.config.AllowedOrigins
		if allowAllOrigins {
			allowedOrigins = nil
		}

		router.Use(cors.New(cors.Config{
			AllowAllOrigins: allowAllOrigins,
			AllowedOrigins:  allowedOrigins,
			AllowedMethods:  s.config.AllowedMethods,
			AllowedHeaders:  s.config.AllowedHeaders,
		}))
	}

	router.GET("/healthcheck", handler.healthCheck(time.Now().UTC()))

	if s.config.Options.EnableStats {
		handler.stat = stats.NewStatistic()

		router.Use(func(c *gin.Context) {
			startTime, recorder := handler.stat.StartRecording(c.Writer)
			c.Next()
			handler.stat.EndRecording(startTime, recorder)
		})

		router.GET("/sys/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, handler.stat.GatherData())
		})
	}

	restrictIPAddresses := RestrictIPAddresses(s.config.Options.AllowedIPAddresses)

	if s.config.Options.EnableHealth {
		router.GET("/sys/info", restrictIPAddresses, handler.sysStats())
	}

	router.POST("/api/auth", handler.authPost())
	router.DELETE("/api/auth", handler.authDelete())

	// The raw media path and the share access listing authorize
	// themselves: password, public album or share token.
	router.GET("/file/*key", middleware.UpgradeToHttps(), handler.fileGet())
	router.GET("/api/shares/:token/access", handler.shareAccess())

	protectedApi := router.Group("api")
	protectedApi.Use(handler.requireAuth())
	{
		protectedApi.POST("/albums", handler.albumPost())
		protectedApi.GET("/albums", handler.albumsGet())
		protectedApi.GET("/albums/:id", handler.albumGet())
		protectedApi.PUT("/albums/:id/public", handler.albumPublicPut())
		protectedApi.DELETE("/albums/:id", handler.albumDelete())

		protectedApi.POST("/albums/:id/files", handler.filePost())
		protectedApi.DELETE("/files/*key", handler.fileDelete())

		protectedApi.POST("/albums/:id/shares", handler.sharePost())
		protectedApi.GET("/albums/:id/shares", handler.sharesGet())
		protectedApi.POST("/albums/:id/shares/revoke", handler.shareRevoke())
		protectedApi.DELETE("/shares/:signature", handler.shareDelete())
	}

	s.engine = router

	return nil
}

// ServeHTTP makes the server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) Run() error {
	return s.engine.Run(fmt.Sprintf(":%d", s.config.Port))
}
