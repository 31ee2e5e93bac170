package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/auth"
	"task-manager/internal/cache"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// store is the backend chosen by the database URL.
type store struct {
	users  service.UserStore
	tasks  service.TaskStore
	pinger service.Pinger
	close  func()
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	if repository.IsMongoURI(cfg.DatabaseURL) {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		m, err := repository.NewMongo(connectCtx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		log.Printf("[info] connected to MongoDB database %q", cfg.DatabaseName)
		return &store{
			users:  m.Users(),
			tasks:  m.Tasks(),
			pinger: m,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.Close(closeCtx)
			},
		}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[info] opened SQLite database %s", cfg.DatabaseURL)
	s := &store{
		users:  repository.NewUserRepository(db),
		tasks:  repository.NewTaskRepository(db),
		pinger: repository.NewSQLPinger(db),
		close:  func() {},
	}
	if sqlDB, err := db.DB(); err == nil {
		s.close = func() { sqlDB.Close() }
	}
	return s, nil
}

func openCache(ctx context.Context, cfg config.Config) (cache.TaskCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedis(pingCtx, cfg.RedisAddr, cache.DefaultTTL)
	if err != nil {
		log.Printf("[warn] task cache disabled: %v", err)
		return cache.Nop{}, func() {}
	}
	log.Printf("[info] task cache enabled at %s", cfg.RedisAddr)
	return rc, func() { rc.Close() }
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.GeneratedSecret {
		log.Println("[warn] JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer st.close()

	taskCache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	authSvc := service.NewAuthService(st.users, auth.NewHasher(cfg.BcryptCost), tokens)
	taskSvc := service.NewTaskService(st.tasks, taskCache)

	monitor := service.NewHealthMonitor(st.pinger, 5*time.Second)
	if err := monitor.Check(ctx); err != nil {
		log.Fatalf("db: %v", err)
	}
	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleHealthCheck(monitor, cfg.HealthInterval); err != nil {
		log.Fatalf("schedule health check: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := api.New(cfg, api.Deps{
		Auth:   authSvc,
		Tasks:  taskSvc,
		Tokens: tokens,
		Health: monitor,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] server listening on %s in %s mode", cfg.Addr(), cfg.Env)
		errCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server stopped with error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
