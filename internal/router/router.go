package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "clinic-referrals/docs"
	mem "clinic-referrals/internal/adapters/storage/memory"
	pg "clinic-referrals/internal/adapters/storage/postgres"
	"clinic-referrals/internal/domain/clients"
	"clinic-referrals/internal/domain/rewards"
	"clinic-referrals/internal/domain/visits"
	"clinic-referrals/internal/middleware"
	"clinic-referrals/internal/platform/logger"
	"clinic-referrals/internal/platform/metrics"
	"clinic-referrals/internal/ports/auth"
	"clinic-referrals/internal/ports/capabilities"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil = modo dev (X-Debug-User-ID)

	// Capabilities nil = cualquier usuario autenticado es staff.
	Capabilities    capabilities.Resolver
	StaffCapability string

	// DB nil = almacén in-memory.
	DB *sql.DB

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// App expone el handler y los servicios (main los usa para los jobs).
type App struct {
	Handler http.Handler

	Clients *clients.Service
	Rewards *rewards.Service
	Visits  *visits.Service
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		clientRepo clients.Repository
		rewardRepo rewards.Repository
		visitRepo  visits.Repository
	)
	if opts.DB != nil {
		repos := pg.NewRepos(opts.DB)
		clientRepo, rewardRepo, visitRepo = repos.Clients, repos.Rewards, repos.Visits
	} else {
		store := mem.NewStore()
		clientRepo, rewardRepo, visitRepo = store.Clients(), store.Rewards(), store.Visits()
	}

	var rec rewards.Recorder
	if opts.Metrics != nil {
		rec = rewardMetrics{m: opts.Metrics}
	}

	// rewards antes que clients: el registro dispara la evaluación del referidor.
	rewardsSvc := rewards.NewService(rewardRepo, clientRepo, log.With(map[string]any{"module": "rewards"}), rec)
	clientsSvc := clients.NewService(clientRepo, rewardsSvc, log.With(map[string]any{"module": "clients"}))
	visitsSvc := visits.NewService(visitRepo, clientRepo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.AccessLog(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Todo lo demás es solo para staff de la clínica.
	r.Group(func(sr chi.Router) {
		sr.Use(middleware.RequireStaff(opts.Capabilities, opts.StaffCapability))

		clients.RegisterRoutes(sr, clientsSvc)
		rewards.RegisterRoutes(sr, rewardsSvc)
		visits.RegisterRoutes(sr, visitsSvc)
	})

	return &App{
		Handler: r,
		Clients: clientsSvc,
		Rewards: rewardsSvc,
		Visits:  visitsSvc,
	}
}

// rewardMetrics adapta metrics.Metrics (labels string) a rewards.Recorder.
type rewardMetrics struct {
	m *metrics.Metrics
}

func (r rewardMetrics) RewardsGranted(t rewards.Type, n int) { r.m.RewardsGranted(string(t), n) }
func (r rewardMetrics) RewardClaimed(t rewards.Type)         { r.m.RewardClaimed(string(t)) }
