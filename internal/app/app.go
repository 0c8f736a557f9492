package app

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/If4x/ShopCalc-Pro/internal/codec"
	"github.com/If4x/ShopCalc-Pro/internal/handler"
	"github.com/If4x/ShopCalc-Pro/internal/register"
	"github.com/If4x/ShopCalc-Pro/internal/storage"
	"github.com/If4x/ShopCalc-Pro/pkg/health"
	"github.com/If4x/ShopCalc-Pro/pkg/httpmiddleware"
)

// Run creates all dependencies and serves the two listeners until ctx is
// cancelled. It is the single wiring point for the application.
//
// A sales reset asks for a relaunch: the listeners drain, a fresh register is
// loaded from storage, and serving resumes without exiting the process. This
// replaces the full device reboot of the original terminal.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("customer_addr", cfg.CustomerAddr),
		zap.String("admin_addr", cfg.AdminAddr),
		zap.String("data_dir", cfg.DataDir),
	)

	gw := storage.NewGateway(cfg.DataDir, codec.Codec{Strict: cfg.StrictDecode}, lg.Named("storage"))
	if err := gw.Init(); err != nil {
		// Non-fatal: the service serves from memory and readiness reports
		// the broken device until it comes back.
		lg.Error("storage device unavailable, durability is broken", zap.Error(err))
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("storage", 5*time.Second, func(context.Context) error {
		return gw.Ping()
	})
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()

	for {
		restart, err := serve(ctx, lg, m, cfg, gw, healthSvc)
		if err != nil {
			return err
		}
		if !restart || ctx.Err() != nil {
			return nil
		}
		lg.Info("relaunching after sales reset")
	}
}

// serve runs one serving generation: a register freshly loaded from storage
// plus both listeners. It returns restart=true when a sales reset asked for a
// relaunch.
func serve(
	ctx context.Context,
	lg *zap.Logger,
	m *app.Telemetry,
	cfg *Config,
	gw *storage.Gateway,
	healthSvc *health.Health,
) (restart bool, err error) {
	reg := register.Load(gw, lg.Named("register"))

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var restartRequested atomic.Bool
	requestRestart := func() {
		if cfg.RestartOnReset {
			restartRequested.Store(true)
			cancel()
		}
	}

	customerSrv := newServer(cfg.CustomerAddr, httpmiddleware.Wrap(
		handler.NewCustomer(reg, requestRestart).Routes(),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg.Named("customer")),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("kasse-customer", m),
		httpmiddleware.LogRequests(),
	))

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	adminMux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	adminMux.Handle("/", handler.NewAdmin(reg).Routes())
	adminSrv := newServer(cfg.AdminAddr, httpmiddleware.Wrap(
		adminMux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg.Named("admin")),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("kasse-admin", m),
		httpmiddleware.LogRequests(),
	))

	g, gctx := errgroup.WithContext(serveCtx)
	for _, srv := range []*http.Server{customerSrv, adminSrv} {
		g.Go(func() error {
			lg.Info("server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "serve %s", srv.Addr)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if !restartRequested.Load() {
			lg.Info("readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancelShutdown()

		err := customerSrv.Shutdown(shutdownCtx)
		if adminErr := adminSrv.Shutdown(shutdownCtx); err == nil {
			err = adminErr
		}
		return err
	})

	healthSvc.SetReady(true)
	if err := g.Wait(); err != nil {
		return false, err
	}
	return restartRequested.Load(), nil
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              addr,
		Handler:           h,
	}
}
