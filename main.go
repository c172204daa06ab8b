package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "washops/internal/config"
	"washops/internal/domain"
	router "washops/internal/http"
	"washops/internal/http/handlers"
	"washops/internal/metrics"
	"washops/internal/repositories"
	"washops/internal/scanner"
	"washops/internal/services"
	"washops/internal/upstream"
	"washops/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env.AuditDSN)
	defer intconfig.CloseDB()

	prom := metrics.NewProm()
	ledger := upstream.NewClient(env.LedgerBaseURL, env.LedgerTimeout)

	registry := &services.Registry{
		Ledger:       ledger,
		Recorder:     prom,
		PollInterval: env.PollInterval,
	}
	verify := &services.VerifyService{
		Ledger:   ledger,
		Audit:    repositories.VerificationRepository{},
		Recorder: prom,
	}
	session := &services.SessionService{
		Ledger:   ledger,
		Registry: registry,
		Recorder: prom,
	}
	history := &services.HistoryService{Ledger: ledger}
	scanMgr := scanner.NewManager(func() scanner.ScanSource {
		return scanner.NewChannelSource()
	}, prom)

	// Registry changes arrive in bursts around start/end; coalesce the gauge
	// updates instead of publishing every intermediate count.
	gaugeDebounce := &utils.Debouncer{Delay: 200 * time.Millisecond}
	registry.Subscribe(func() {
		gaugeDebounce.Do(func() {
			prom.ActiveWashes(registry.Count())
		})
	})
	session.Subscribe(func(t domain.Transition) {
		utils.LogEvent("", "session", "transition", string(t.From)+" -> "+string(t.To))
	})

	handlers.Init(handlers.Deps{
		Env:      env,
		Scanner:  scanMgr,
		Verify:   verify,
		Session:  session,
		Registry: registry,
		History:  history,
		Docs:     services.DocsService{},
		Audit:    repositories.VerificationRepository{},
	})

	r := router.NewRouter(env, prom)

	pollCtx, stopPolling := context.WithCancel(context.Background())
	go pollRegistry(pollCtx, registry, env.PollInterval)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("console backend listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	stopPolling()
	gaugeDebounce.Cancel()
	scanMgr.CloseActive()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}

// pollRegistry keeps the active set warm so console loads hit a fresh cache.
func pollRegistry(ctx context.Context, registry *services.Registry, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := registry.Refresh(ctx); err != nil {
				log.Printf("registry refresh failed: %v", err)
			}
		}
	}
}
