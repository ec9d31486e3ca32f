package router

import (
	"context"

	"github.com/oksasatya/mavrick-auth/internal/application"
	"github.com/oksasatya/mavrick-auth/internal/container"
	repo "github.com/oksasatya/mavrick-auth/internal/domain/repository"
	"github.com/oksasatya/mavrick-auth/internal/infrastructure/audit"
	"github.com/oksasatya/mavrick-auth/internal/infrastructure/memory"
	"github.com/oksasatya/mavrick-auth/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/mavrick-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/mavrick-auth/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/mavrick-auth/internal/interface/http"
	"github.com/oksasatya/mavrick-auth/internal/router/modules"
)

type AuthModuleDeps struct {
	Users       repo.UserRepository
	OTPs        repo.OTPRepository
	Service     *application.Service
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
	AuditES     *audit.ESSink
}

// Close flushes background audit delivery.
func (d AuthModuleDeps) Close(ctx context.Context) error {
	if d.AuditES == nil {
		return nil
	}
	return d.AuditES.Close(ctx)
}

func buildUserRepo() repo.UserRepository {
	if container.GetConfig().StoreDriver == "postgres" && container.GetPGPool() != nil {
		return pginfra.NewUserRepository(container.GetPGPool())
	}
	return memory.NewUserRepository()
}

func buildOTPRepo() repo.OTPRepository {
	if container.GetConfig().OTPDriver == "redis" && container.GetRedis() != nil {
		return redisstore.NewOTPRepository(container.GetRedis())
	}
	return memory.NewOTPRepository()
}

func buildNotifier() application.OTPNotifier {
	cfg := container.GetConfig()
	if cfg.MailSendEnabled && container.GetRabbitPub() != nil {
		return notify.NewQueueNotifier(container.GetRabbitPub(), cfg)
	}
	return notify.NewLogNotifier(container.GetLogger())
}

func buildAudit() (application.AuditSink, *audit.ESSink) {
	cfg := container.GetConfig()
	sinks := application.MultiSink{audit.NewLogSink(container.GetLogger())}
	if cfg.DebugMetricsEnabled {
		sinks = append(sinks, audit.NewExpvarSink())
	}
	var esSink *audit.ESSink
	if es := container.GetES(); es != nil {
		esSink = audit.NewESSink(es, cfg.ESAuditIndex, container.GetLogger())
		sinks = append(sinks, esSink)
	}
	return sinks, esSink
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := buildUserRepo()
	otps := buildOTPRepo()

	service := application.NewService(
		users,
		application.NewOTPStore(otps, cfg.OTPTTL),
		container.GetJWT(),
		logger,
	)
	service.BcryptCost = cfg.BcryptCost
	service.ExposeOTP = cfg.OTPExposeInResponse
	service.SetProviders(cfg.Providers())
	service.Notifier = buildNotifier()
	auditSink, esSink := buildAudit()
	service.Audit = auditSink

	return AuthModuleDeps{
		Users:       users,
		OTPs:        otps,
		Service:     service,
		AuthHandler: handlers.NewAuthHandler(service, logger, cfg.CookieDomain, cfg.CookieSecure),
		UserHandler: handlers.NewUserHandler(service, logger),
		AuditES:     esSink,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) AuthModuleDeps {
	cfg := container.GetConfig()
	deps := buildAuthDeps()

	max := 0
	if cfg.RateLimitEnabled {
		max = cfg.RateLimitMax
	}
	r.Add(modules.NewAuthModule(deps.AuthHandler, container.GetRedis(), max, cfg.RateLimitWindow))
	r.Add(modules.NewUserModule(deps.UserHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
	return deps
}
