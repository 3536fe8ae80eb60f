package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/ids"
	"tenderdesk/api/internal/middleware"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/service"
	"tenderdesk/api/internal/storage"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	authService   *service.AuthService
	uploadService *service.UploadService
	db            *pgxpool.Pool
	cache         *redis.Client
	store         *storage.ObjectStore
	users         *repository.UserRepository
	notes         *repository.NoteRepository
	notifications *repository.NotificationRepository
	activity      *repository.ActivityRepository
	settings      *repository.SettingsRepository
	documents     *repository.DocumentRepository
	tenders       *repository.TenderRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, mailer service.Mailer, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	auth := service.NewAuthService(userRepo, mailer, cfg.Security, log)
	upload := service.NewUploadService(documentRepo, store, cfg, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		authService:   auth,
		uploadService: upload,
		db:            db,
		cache:         cache,
		store:         store,
		users:         userRepo,
		notes:         noteRepo,
		notifications: notificationRepo,
		activity:      activityRepo,
		settings:      settingsRepo,
		documents:     documentRepo,
		tenders:       tenderRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/register", h.RegisterAccount)
	auth.POST("/login",
		middleware.LoginRateLimit(h.cache, h.cfg.Security.LoginAttemptLimit, h.cfg.Security.LoginAttemptWindow, h.log),
		h.Login,
	)
	auth.POST("/logout", h.Logout)
	auth.POST("/verify-email", h.VerifyEmail)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)

	// Kept at the top level for compatibility with the frontend's silent
	// refresh interceptor.
	router.POST("/refresh-token", h.RefreshToken)

	protected := router.Group("")
	protected.Use(middleware.Auth(h.cfg.Security.JWTSecret, h.users, h.log))
	{
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.PUT("/profile/password", h.ChangePassword)

		protected.GET("/notes", h.ListNotes)
		protected.POST("/notes", h.CreateNote)
		protected.GET("/notes/:id", h.GetNote)
		protected.PUT("/notes/:id", h.UpdateNote)
		protected.DELETE("/notes/:id", h.DeleteNote)

		protected.GET("/notifications", h.ListNotifications)
		protected.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		protected.PUT("/notifications/:id/read", h.MarkNotificationRead)
		protected.DELETE("/notifications/:id", h.DeleteNotification)

		protected.GET("/activity", h.ListActivity)

		protected.GET("/settings", h.GetSettings)
		protected.PUT("/settings", h.UpdateSettings)

		protected.POST("/files", h.UploadFile)
		protected.GET("/files", h.ListFiles)
		protected.DELETE("/files/:id", h.DeleteFile)

		protected.GET("/tenders", h.ListTenders)
		protected.GET("/tenders/:id", h.GetTender)
	}

	admin := router.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg.Security.JWTSecret, h.users, h.log),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/role", h.AdminUpdateUserRole)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		admin.POST("/tenders", h.AdminCreateTender)
		admin.PUT("/tenders/:id", h.AdminUpdateTender)
		admin.DELETE("/tenders/:id", h.AdminDeleteTender)
	}
}

// recordActivity writes an audit entry. Audit failures never fail the
// request that produced them.
func (h HandlerSet) recordActivity(c *gin.Context, userID string, action string, description string) {
	entry := models.ActivityLog{
		ID:          ids.New(),
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
	}
	if err := h.activity.Create(c.Request.Context(), entry); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Str("action", action).Msg("activity log write failed")
	}
}

// notifySecurity drops a security notification for the account, honoring
// its alert preference.
func (h HandlerSet) notifySecurity(c *gin.Context, userID string, title string, message string) {
	prefs, err := h.settings.Get(c.Request.Context(), userID)
	if err == nil && !prefs.SecurityAlerts {
		return
	}

	n := models.Notification{
		ID:      ids.New(),
		UserID:  userID,
		Type:    models.NotificationSecurity,
		Title:   title,
		Message: message,
	}
	if err := h.notifications.Create(c.Request.Context(), n); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("security notification write failed")
	}
}
