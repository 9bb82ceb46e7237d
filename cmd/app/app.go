package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/config"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/db"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/logger"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/service"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}
	response.SetExposeErrorDetails(conf.API.ExposeErrorDetails)

	// Only the log level and error exposure are applied without a restart.
	err = config.Watch(configPath, func(c *config.AppConfig) {
		if err := logger.SetLevel(c.API.LogLevel); err != nil {
			zap.L().Warn("ignoring log level from reloaded config", zap.Error(err))
		}
		response.SetExposeErrorDetails(c.API.ExposeErrorDetails)
		zap.L().Info("config reloaded", zap.Stringer("log_level", logger.Level()))
	}, func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = db.ConfigurePool(postgresDB, conf.Postgres); err != nil {
		return fmt.Errorf("failed to configure database pool -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	users := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(postgresDB)))
	if _, err = users.EnsureAdmin(context.Background(), conf.Admin.Email, conf.Admin.Name, conf.Admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
