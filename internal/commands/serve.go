package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnsblockd/dnsblockd/internal/api"
	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/dnsproxy"
	"github.com/dnsblockd/dnsblockd/internal/dnsproxy/redirect"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/lists"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/stats"
)

func CreateServeCommand() *ServeCommand {
	sc := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ExitOnError),
	}

	sc.fs.BoolVar(&sc.NoRefresh, "no-refresh", false, "Disable the periodic filter list refresh")

	return sc
}

// ServeCommand runs the resolver daemon: DNS proxy, background list
// refresher and, when enabled, the management API and the port 53 redirect.
type ServeCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	NoRefresh bool

	store    *filter.Store
	stats    *stats.Aggregator
	proxy    *dnsproxy.Proxy
	redirect *redirect.Redirect

	apiServer *api.Server
	apiRunner *RestartableRunner

	// refresh is the manual trigger; the API refresh endpoint and SIGHUP
	// both post into it.
	refresh chan struct{}
}

func (s *ServeCommand) Name() string {
	return s.fs.Name()
}

func (s *ServeCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		s.cfg = cfg
	}

	return nil
}

func (s *ServeCommand) Run() error {
	log.Infof("Starting dnsblockd %s...", s.ctx.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	s.store = filter.NewStore()
	s.stats = stats.NewAggregator()
	s.refresh = make(chan struct{}, 1)

	// First compilation is fatal on failure: starting a resolver that blocks
	// nothing would silently defeat the purpose.
	idx, err := lists.BuildIndex(ctx, s.cfg, false)
	if err != nil {
		return fmt.Errorf("initial filter compilation failed: %w", err)
	}
	s.store.Publish(idx)
	logIndexStats("ready", idx)

	if err := s.startDNSProxy(); err != nil {
		return err
	}

	if s.cfg.Redirect != nil && s.cfg.Redirect.Enable {
		s.applyRedirect()
	}

	if s.cfg.API != nil && s.cfg.API.Enable {
		if err := s.startAPIServer(ctx); err != nil {
			log.Errorf("Failed to start API server: %v", err)
			log.Warnf("Management API will not be available")
		}
	} else {
		log.Infof("Management API is disabled")
	}

	go s.refreshLoop(ctx)

	log.Infof("dnsblockd started. Send SIGHUP to refresh filter lists")

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Infof("Received SIGHUP, scheduling filter refresh...")
			select {
			case s.refresh <- struct{}{}:
			default:
			}

		case syscall.SIGINT, syscall.SIGTERM:
			log.Infof("Received signal %v, shutting down...", sig)
			return s.shutdown()
		}
	}
	return nil
}

func (s *ServeCommand) startDNSProxy() error {
	proxy, err := dnsproxy.NewProxy(dnsproxy.ProxyConfigFromAppConfig(s.cfg), s.store, s.stats)
	if err != nil {
		return fmt.Errorf("failed to create DNS proxy: %w", err)
	}
	s.proxy = proxy

	if err := s.proxy.Start(); err != nil {
		s.proxy = nil
		return fmt.Errorf("failed to start DNS proxy: %w", err)
	}
	return nil
}

// applyRedirect installs the port 53 interception rules. Failures are
// logged, not fatal: the resolver still answers on its own listener.
func (s *ServeCommand) applyRedirect() {
	rd, err := redirect.New(s.cfg)
	if err != nil {
		log.Errorf("Failed to initialize DNS redirect: %v", err)
		log.Warnf("Port 53 interception will not be available")
		return
	}
	if err := rd.Apply(); err != nil {
		log.Errorf("Failed to apply DNS redirect rules: %v", err)
		log.Warnf("Port 53 interception will not be available")
		return
	}
	s.redirect = rd
}

// startAPIServer starts the HTTP API under a RestartableRunner so an API
// crash never interrupts DNS resolution.
func (s *ServeCommand) startAPIServer(ctx context.Context) error {
	log.Infof("Starting API server on %s", s.cfg.API.Listen)
	if s.cfg.API.PrivateOnly {
		log.Infof("Access restricted to private subnets only")
	}

	s.apiServer = api.NewServer(s.cfg, s.store, s.stats, s.refresh, s.ctx.Version)

	s.apiRunner = NewRestartableRunner(RunnerConfig{
		Name:           "API server",
		MaxRestarts:    0, // Unlimited restarts
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}, func(runCtx context.Context) error {
		return s.apiServer.Start()
	})

	return s.apiRunner.Start(ctx)
}

// refreshLoop waits for the periodic ticker or a manual trigger and rebuilds
// the filter index. With refresh disabled the ticker channel stays nil and
// only manual triggers arrive.
func (s *ServeCommand) refreshLoop(ctx context.Context) {
	var tick <-chan time.Time
	if !s.NoRefresh && s.cfg.Filtering.RefreshIntervalHours > 0 {
		interval := time.Duration(s.cfg.Filtering.RefreshIntervalHours) * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
		log.Infof("Filter lists refresh every %v", interval)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-s.refresh:
		}
		s.refreshOnce(ctx)
	}
}

func (s *ServeCommand) refreshOnce(ctx context.Context) {
	log.Infof("Refreshing filter lists...")

	idx, err := lists.BuildIndex(ctx, s.cfg, true)
	if err != nil {
		// Keep serving on the previous snapshot; a failed refresh must not
		// degrade resolution.
		log.Errorf("Filter refresh failed, keeping previous snapshot: %v", err)
		return
	}

	s.store.Publish(idx)
	logIndexStats("refreshed", idx)
}

func (s *ServeCommand) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error

	// Reverse start order: API first, then the interception rules, then the
	// proxy itself.
	if s.apiServer != nil {
		if err := s.apiServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("API server: %w", err))
		}
	}
	if s.apiRunner != nil {
		if err := s.apiRunner.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("API runner: %w", err))
		}
	}

	if s.redirect != nil {
		if err := s.redirect.Remove(); err != nil {
			errs = append(errs, fmt.Errorf("DNS redirect: %w", err))
		}
	}

	if s.proxy != nil {
		if err := s.proxy.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("DNS proxy: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with errors: %v", errs)
	}

	log.Infof("dnsblockd stopped")
	return nil
}

func logIndexStats(what string, idx *filter.Index) {
	st := idx.Stats()
	log.Infof("Filter index %s: %d domain rules, %d glob rules, %d exceptions, %d whitelist entries",
		what, st.DomainRules, st.GlobRules, st.ExceptionRules, st.WhitelistEntries)
	if len(st.Warnings) > 0 {
		log.Warnf("Compilation degraded, %d source(s) unavailable: %v", len(st.Warnings), st.Warnings)
	}
}
