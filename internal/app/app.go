package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/calldesk/internal/config"
	"github.com/templui/calldesk/internal/db"
	"github.com/templui/calldesk/internal/middleware"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/service"
	"github.com/templui/calldesk/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Storage           storage.Storage
	AuthService       *service.AuthService
	UserService       *service.UserService
	CallService       *service.CallService
	CommentService    *service.CommentService
	AttachmentService *service.AttachmentService
	LookupService     *service.LookupService
	AuthLimiter       *middleware.RateLimiter

	// PublicIdentity is set only when authentication is disabled.
	PublicIdentity *model.Identity
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a, err := Wire(cfg, database, fileStorage)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// Wire builds the services over an already migrated database and a storage
// backend. With auth disabled it provisions the public user before returning.
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	callRepository := repository.NewCallRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	attachmentRepository := repository.NewAttachmentRepository(database)
	contactPersonRepository, err := repository.NewLookupRepository(database, model.LookupContactPerson)
	if err != nil {
		return nil, err
	}
	operatorRepository, err := repository.NewLookupRepository(database, model.LookupOperator)
	if err != nil {
		return nil, err
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepository)
	callService := service.NewCallService(callRepository, fileStorage)
	commentService := service.NewCommentService(callRepository, commentRepository)
	attachmentService := service.NewAttachmentService(commentRepository, attachmentRepository, fileStorage)
	lookupService := service.NewLookupService(contactPersonRepository, operatorRepository)

	a := &App{
		Cfg:               cfg,
		DB:                database,
		Storage:           fileStorage,
		AuthService:       authService,
		UserService:       userService,
		CallService:       callService,
		CommentService:    commentService,
		AttachmentService: attachmentService,
		LookupService:     lookupService,
		AuthLimiter:       middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
	}

	if cfg.DisableAuth {
		a.PublicIdentity, err = authService.EnsurePublicUser()
		if err != nil {
			return nil, fmt.Errorf("failed to provision public user: %w", err)
		}
	}

	return a, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
