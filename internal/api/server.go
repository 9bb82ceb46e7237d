package api

import (
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/event-registration/docs"
	v1 "github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/config"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/service"
)

const basePath = "/api"

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	authHandler := s.initAuthHandler(db, userSvc)
	eventHandler := s.initEventHandler(db)
	s.MountHandlers(authHandler, eventHandler, middleware.NewAuthenticator(conf.API.JWTSigningKey, userSvc))

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB, users *service.UserService) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc, users)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	svc := service.NewEventService(eventRepo, regRepo)
	tickets := service.NewTicketService(svc, publicURL(s.Config.API.BaseURL), s.Config.Ticket.QRSize, nil)
	export := service.NewExportService(svc)
	handler := v1.NewEventHandler(svc, tickets, export)

	return handler
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ZapLogger())
	s.Router.Use(middleware.Metrics())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, eventHandler *v1.EventHandler, authenticator *middleware.Authenticator) {
	verify := authenticator.VerifyJWT()

	auth := s.Router.Group(basePath + "/auth")
	{
		auth.POST("/register", authHandler.HandleSignup)
		auth.POST("/login", authHandler.HandleLogin)
		auth.POST("/check-email", authHandler.HandleCheckEmail)
		auth.GET("/me", verify, authHandler.HandleMe)
	}

	public := s.Router.Group(basePath + "/events")
	{
		public.GET("", eventHandler.HandleListEvents)
		public.GET("/:id", eventHandler.HandleGetEvent)
	}

	events := s.Router.Group(basePath+"/events", verify)
	{
		events.POST("", eventHandler.HandleCreateEvent)
		events.PUT("/:id", eventHandler.HandleUpdateEvent)
		events.DELETE("/:id", eventHandler.HandleDeleteEvent)
		events.POST("/:id/register", eventHandler.HandleRegister)
		events.GET("/:id/registration", eventHandler.HandleMyRegistration)
		events.GET("/:id/ticket", eventHandler.HandleTicket)
		events.GET("/:id/registrations", eventHandler.HandleListRegistrations)
		events.GET("/:id/registrations/export", eventHandler.HandleExportRegistrations)
		events.GET("/:id/registrations/:registrationId", eventHandler.HandleGetRegistration)
	}

	admin := s.Router.Group(basePath+"/events", verify, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/admin/all", eventHandler.HandleListAllEvents)
		admin.POST("/:id/recount", eventHandler.HandleRecount)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET(basePath, v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(s.Config.API.BaseURL, "https://"), "http://")
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Hackathon event registration API"
	docs.SwaggerInfo.Description = "Events, registrations and tickets for hackathons."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// publicURL turns the configured host into an absolute URL for tickets.
func publicURL(baseURL string) string {
	if strings.Contains(baseURL, "://") {
		return baseURL
	}

	return "http://" + baseURL
}
