package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/user/profile-service/config"
	"github.com/user/profile-service/db"
	"github.com/user/profile-service/logging"
	"github.com/user/profile-service/server"
	"github.com/user/profile-service/users"
)

const shutdownTimeout = 30 * time.Second

func runServe(ctx context.Context, migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	if migrate {
		if err := db.RunMigrations(cfg.Database); err != nil {
			return err
		}
		logger.Info(ctx, "migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()

	handler, err := server.NewRouter(server.Deps{
		Config: cfg,
		Logger: logger,
		Users:  users.NewPostgresRepository(sqlDB),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", srv.Addr, "upload_dir", cfg.Upload.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info(context.Background(), "server stopped gracefully")
	return nil
}

func runMigrate() error {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return err
	}
	if err := db.RunMigrations(*cfg); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}

func runCreateUser(ctx context.Context, username, password, role string) error {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, *cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()

	svc := users.NewService(users.NewPostgresRepository(sqlDB), nil, "")
	user, err := svc.CreateUser(ctx, username, password, role)
	if err != nil {
		return err
	}
	fmt.Printf("created user %q (id %d, role %s)\n", user.Username, user.ID, user.Role)
	return nil
}
