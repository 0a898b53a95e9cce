package cmd

import (
	"log/slog"

	"lastmile/api"
	"lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/postgres"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/jobs"
	"lastmile/internal/pkg/clock"
	"lastmile/internal/pkg/metrics"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use cases together.
// Every Create method returns a fresh handler sharing the same database and metrics.
type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewCompositionRoot creates the metrics registry and the unit of work factory
// used by all handlers.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	m := metrics.NewMetrics(configs.MetricsNamespace)
	return CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, postgres.WithMetrics(m)),
		clock:      clock.NewSystem(),
		metrics:    m,
		logger:     logger,
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) stopUoW() commands.StopUoWFactory {
	return FuncStopUoWFactory(func() commands.StopUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) evidenceGate() services.EvidenceGate {
	return services.NewEvidenceGate(c.clock)
}

func (c *CompositionRoot) otpVerifier() services.OtpVerifier {
	return services.NewOtpVerifier(c.clock, services.CryptoCodeSource{}, c.configs.OtpTTL)
}

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	return commands.NewCreateRouteCommandHandler(c.uow())
}

func (c *CompositionRoot) CreateOptimizeRouteCommandHandler() commands.OptimizeRouteCommandHandler {
	return commands.NewOptimizeRouteCommandHandler(c.uow(), services.NewRouteOptimizer(), c.clock)
}

func (c *CompositionRoot) CreateReorderStopsCommandHandler() commands.ReorderStopsCommandHandler {
	return commands.NewReorderStopsCommandHandler(c.uow(), services.NewRouteOptimizer())
}

func (c *CompositionRoot) CreateOptimizeScheduledRoutesCommandHandler() commands.OptimizeScheduledRoutesCommandHandler {
	optimize := c.CreateOptimizeRouteCommandHandler()
	return commands.NewOptimizeScheduledRoutesCommandHandler(c.uow(), &optimize)
}

func (c *CompositionRoot) CreateTransitionStopCommandHandler() commands.TransitionStopCommandHandler {
	return commands.NewTransitionStopCommandHandler(c.uow(), services.NewStopLifecycle(c.clock, c.evidenceGate()))
}

func (c *CompositionRoot) CreateGenerateOtpCommandHandler() commands.GenerateOtpCommandHandler {
	return commands.NewGenerateOtpCommandHandler(c.stopUoW(), c.otpVerifier())
}

func (c *CompositionRoot) CreateVerifyOtpCommandHandler() commands.VerifyOtpCommandHandler {
	return commands.NewVerifyOtpCommandHandler(c.stopUoW(), c.otpVerifier())
}

func (c *CompositionRoot) CreateCaptureEvidenceCommandHandler() commands.CaptureEvidenceCommandHandler {
	return commands.NewCaptureEvidenceCommandHandler(c.stopUoW(), c.evidenceGate())
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() (*http.Server, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, err
	}

	createRoute := c.CreateCreateRouteCommandHandler()
	optimizeRoute := c.CreateOptimizeRouteCommandHandler()
	reorderStops := c.CreateReorderStopsCommandHandler()
	transitionStop := c.CreateTransitionStopCommandHandler()
	generateOtp := c.CreateGenerateOtpCommandHandler()
	verifyOtp := c.CreateVerifyOtpCommandHandler()
	captureEvidence := c.CreateCaptureEvidenceCommandHandler()

	return http.NewServer(http.Handlers{
		CreateRoute:     &createRoute,
		GetRoute:        c.CreateGetRouteQueryHandler(),
		OptimizeRoute:   &optimizeRoute,
		ReorderStops:    &reorderStops,
		TransitionStop:  &transitionStop,
		GenerateOtp:     &generateOtp,
		VerifyOtp:       &verifyOtp,
		CaptureEvidence: &captureEvidence,
	}, doc, c.metrics, c.logger), nil
}

// CreateJobManager wires the scheduled optimisation job. An empty cron expression
// leaves it disabled.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	if c.configs.OptimizeCron == "" {
		return jobs.NewJobManager(nil, c.logger)
	}
	scheduled := c.CreateOptimizeScheduledRoutesCommandHandler()
	job := jobs.NewRouteOptimizationJob(&scheduled, c.clock, c.configs.OptimizeCron, c.metrics, c.logger)
	return jobs.NewJobManager(job, c.logger)
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// FuncStopUoWFactory adapts a function to commands.StopUoWFactory.
type FuncStopUoWFactory func() commands.StopUoW

func (f FuncStopUoWFactory) Create() commands.StopUoW {
	return f()
}
