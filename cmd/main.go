package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "assochub/docs"
	"assochub/internal/caching"
	"assochub/internal/config"
	"assochub/internal/handlers"
	"assochub/internal/jobs/background"
	"assochub/internal/middleware"
	"assochub/internal/models"
	"assochub/internal/repositories"
	"assochub/internal/services"
	"assochub/pkg/database"
)

const version = "1.0.0"

// @title AssocHub API
// @version 1.0.0
// @description Residential association management: members, units, documents, meetings and voting.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("configuration: %v", err)
	}

	log := newLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "assochub@" + version,
			AttachStacktrace: true,
		}); err != nil {
			log.WithError(err).Warn("sentry init failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.WithError(err).Fatal("failed to apply schema")
		}
	}

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	storage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}
	if err := storage.EnsureBucketExists(ctx); err != nil {
		// documents stay unavailable until storage recovers; everything else runs
		log.WithError(err).Warn("document bucket unavailable")
	}

	jwtAuth, err := middleware.NewJWTAuth(middleware.JWTConfig{
		JWKSURL:  cfg.Auth.JWKSURL,
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize token verification")
	}
	defer jwtAuth.Close()

	// Repositories
	associationRepo := repositories.NewAssociationRepository(pool)
	membershipRepo := repositories.NewMembershipRepository(pool)
	memberRepo := repositories.NewMemberRepository(pool)
	unitRepo := repositories.NewUnitRepository(pool)
	documentRepo := repositories.NewDocumentRepository(pool)
	votingRepo := repositories.NewVotingRepository(pool)
	meetingRepo := repositories.NewMeetingRepository(pool)
	auditLogsRepo := repositories.NewAuditLogsRepository(pool)
	subscriptionRepo := repositories.NewSubscriptionRepository(pool)
	platformAdminRepo := repositories.NewPlatformAdminRepository(pool)

	// Services
	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	notifier := services.NewNotificationService(redisClient, mailer, log)
	gateway := services.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	accessSvc := services.NewAccessService(associationRepo, membershipRepo, memberRepo, unitRepo)
	auditSvc := services.NewAuditLogsService(auditLogsRepo, accessSvc, log)
	associationSvc := services.NewAssociationService(associationRepo, membershipRepo, memberRepo, subscriptionRepo, accessSvc, auditSvc)
	memberSvc := services.NewMemberService(memberRepo, membershipRepo, associationRepo, unitRepo, accessSvc, auditSvc, notifier, cfg.AppURL)
	unitSvc := services.NewUnitService(unitRepo, memberRepo, associationRepo, accessSvc, auditSvc)
	documentSvc := services.NewDocumentService(documentRepo, storage, accessSvc, auditSvc, log)
	votingSvc := services.NewVotingService(votingRepo, unitRepo, accessSvc, auditSvc)
	meetingSvc := services.NewMeetingService(meetingRepo, memberRepo, unitRepo, accessSvc, auditSvc, notifier, cfg.AppURL, log)
	billingSvc := services.NewBillingService(associationRepo, subscriptionRepo, gateway, cacheSvc, accessSvc, auditSvc, log, cfg.AppURL)
	platformAdminSvc := services.NewPlatformAdminService(platformAdminRepo, associationRepo, membershipRepo, memberRepo, subscriptionRepo, cacheSvc, auditSvc, log)

	// Background jobs
	scheduler, err := background.NewJobScheduler(notifier, meetingSvc, billingSvc, background.Config{
		EmailDispatchInterval: cfg.Jobs.EmailDispatchInterval,
		EmailBatchSize:        cfg.Jobs.EmailBatchSize,
		ReminderInterval:      cfg.Jobs.ReminderInterval,
		ReminderWindow:        cfg.Jobs.ReminderWindow,
		TrialExpiryInterval:   cfg.Jobs.TrialExpiryInterval,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create job scheduler")
	}
	scheduler.Start()

	// Handlers
	associationHandlers := handlers.NewAssociationHandlers(associationSvc)
	memberHandlers := handlers.NewMemberHandlers(memberSvc, unitSvc)
	unitHandlers := handlers.NewUnitHandlers(unitSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	votingHandlers := handlers.NewVotingHandlers(votingSvc)
	meetingHandlers := handlers.NewMeetingHandlers(meetingSvc)
	auditLogsHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	billingHandlers := handlers.NewBillingHandlers(billingSvc)
	webhookHandlers := handlers.NewWebhookHandlers(billingSvc, log)
	platformHandlers := handlers.NewPlatformAdminHandlers(platformAdminSvc)
	jobHandlers := handlers.NewJobHandlers(scheduler)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storage, version)
	rbacMiddleware := middleware.NewRBACMiddleware(platformAdminSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = errorHandler(e, log)

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Payment provider callbacks authenticate by signature, not by token
	e.POST("/webhooks/stripe", webhookHandlers.StripeWebhook)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.GET("/billing/tiers", billingHandlers.ListTiers)

	protected := v1.Group("", jwtAuth.Middleware())

	protected.POST("/invitations/accept", associationHandlers.AcceptInvitations)
	protected.GET("/associations", associationHandlers.ListMyAssociations)
	protected.POST("/associations", associationHandlers.CreateAssociation)

	assoc := protected.Group("/associations/:associationId")
	assoc.GET("", associationHandlers.GetAssociation)
	assoc.PATCH("", associationHandlers.UpdateAssociation)

	assoc.GET("/memberships", associationHandlers.ListMemberships)
	assoc.PATCH("/memberships/:membershipId", associationHandlers.UpdateMembershipRole)
	assoc.DELETE("/memberships/:membershipId", associationHandlers.RemoveMembership)

	assoc.GET("/members", memberHandlers.ListMembers)
	assoc.POST("/members", memberHandlers.InviteMember)
	assoc.GET("/members/:memberId", memberHandlers.GetMember)
	assoc.PATCH("/members/:memberId", memberHandlers.UpdateMember)
	assoc.DELETE("/members/:memberId", memberHandlers.RemoveMember)
	assoc.GET("/members/:memberId/units", memberHandlers.ListMemberUnits)

	assoc.GET("/units", unitHandlers.ListUnits)
	assoc.POST("/units", unitHandlers.CreateUnit)
	assoc.GET("/unit-assignments", unitHandlers.ListAssignments)
	assoc.GET("/units/:unitId", unitHandlers.GetUnit)
	assoc.PUT("/units/:unitId", unitHandlers.UpdateUnit)
	assoc.DELETE("/units/:unitId", unitHandlers.DeleteUnit)
	assoc.POST("/units/:unitId/assignment", unitHandlers.AssignUnit)
	assoc.DELETE("/units/:unitId/assignment/:memberId", unitHandlers.UnassignUnit)

	assoc.GET("/documents", documentHandlers.ListDocuments)
	assoc.POST("/documents", documentHandlers.CreateDocument)
	assoc.POST("/documents/upload-url", documentHandlers.CreateUploadURL)
	assoc.GET("/documents/:documentId", documentHandlers.GetDocument)
	assoc.PATCH("/documents/:documentId", documentHandlers.UpdateDocument)
	assoc.DELETE("/documents/:documentId", documentHandlers.DeleteDocument)
	assoc.GET("/documents/:documentId/download-url", documentHandlers.GetDownloadURL)

	assoc.GET("/topics", votingHandlers.ListTopics)
	assoc.POST("/topics", votingHandlers.CreateTopic)
	assoc.POST("/topics/proposals", votingHandlers.ProposeTopic)
	assoc.GET("/topics/:topicId", votingHandlers.GetTopic)
	assoc.DELETE("/topics/:topicId", votingHandlers.DeleteTopic)
	assoc.POST("/topics/:topicId/activate", votingHandlers.ActivateTopic)
	assoc.POST("/topics/:topicId/close", votingHandlers.CloseTopic)
	assoc.POST("/topics/:topicId/votes", votingHandlers.CastVote)
	assoc.GET("/topics/:topicId/votes/me", votingHandlers.GetMyVote)
	assoc.GET("/topics/:topicId/results", votingHandlers.GetResults)

	assoc.GET("/meetings", meetingHandlers.ListMeetings)
	assoc.POST("/meetings", meetingHandlers.CreateMeeting)
	assoc.GET("/meetings/:meetingId", meetingHandlers.GetMeeting)
	assoc.PATCH("/meetings/:meetingId", meetingHandlers.UpdateMeeting)
	assoc.DELETE("/meetings/:meetingId", meetingHandlers.DeleteMeeting)
	assoc.POST("/meetings/:meetingId/schedule", meetingHandlers.ScheduleMeeting)
	assoc.POST("/meetings/:meetingId/complete", meetingHandlers.CompleteMeeting)
	assoc.POST("/meetings/:meetingId/archive", meetingHandlers.ArchiveMeeting)
	assoc.POST("/meetings/:meetingId/cancel", meetingHandlers.CancelMeeting)
	assoc.PUT("/meetings/:meetingId/rsvp", meetingHandlers.RSVP)
	assoc.GET("/meetings/:meetingId/rsvp", meetingHandlers.GetMyRSVP)
	assoc.GET("/meetings/:meetingId/attendance", meetingHandlers.ListAttendance)
	assoc.GET("/meetings/:meetingId/attendance/stats", meetingHandlers.AttendanceStats)

	assoc.GET("/audit-logs", auditLogsHandlers.ListAuditLogs)

	assoc.POST("/billing/checkout", billingHandlers.CreateCheckoutSession)
	assoc.POST("/billing/portal", billingHandlers.CreatePortalSession)

	// Platform administration
	platform := protected.Group("/platform", rbacMiddleware.RequirePlatformAdmin(""))
	platform.GET("/stats", platformHandlers.GetPlatformStats)
	platform.GET("/associations", platformHandlers.ListAssociations)
	platform.GET("/associations/:associationId", platformHandlers.GetAssociation)
	platform.POST("/associations/:associationId/suspend", platformHandlers.SuspendAssociation)
	platform.POST("/associations/:associationId/reactivate", platformHandlers.ReactivateAssociation)
	platform.PATCH("/associations/:associationId/subscription", platformHandlers.UpdateAssociationSubscription)
	platform.GET("/associations/:associationId/admins", platformHandlers.ListAssociationAdmins)
	platform.POST("/associations/:associationId/admins", platformHandlers.AddAssociationAdmin)
	platform.DELETE("/associations/:associationId/admins/:membershipId", platformHandlers.RemoveAssociationAdmin)
	platform.GET("/admins", platformHandlers.ListPlatformAdmins)
	platform.POST("/admins", platformHandlers.CreatePlatformAdmin)
	platform.PATCH("/admins/:adminId", platformHandlers.UpdatePlatformAdmin)
	platform.GET("/tiers", platformHandlers.ListAllTiers)
	platform.POST("/tiers", platformHandlers.CreateTier)
	platform.PUT("/tiers/:name", platformHandlers.UpdateTier)

	jobs := protected.Group("/platform/jobs", rbacMiddleware.RequirePlatformAdmin(models.PermAdminsManage))
	jobs.GET("", jobHandlers.ListJobs)
	jobs.POST("/:name/run", jobHandlers.RunJob)

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "version": version, "environment": cfg.Environment}).Info("assochub server starting")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		log.WithError(err).Error("scheduler shutdown failed")
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// errorHandler reports server-side failures to Sentry and hides their details
// from the client. Client errors pass through unchanged.
func errorHandler(e *echo.Echo, log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if hub := sentry.CurrentHub().Clone(); hub.Client() != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetRequest(c.Request())
				scope.SetTag("route", c.Path())
				hub.CaptureException(err)
			})
		}
		log.WithError(err).WithField("route", c.Path()).Error("unhandled error")

		if he != nil && he.Code != http.StatusInternalServerError {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		e.DefaultHTTPErrorHandler(echo.NewHTTPError(http.StatusInternalServerError, "Internal server error"), c)
	}
}
