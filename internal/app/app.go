// Package app holds the startup steps shared by the server and the migrate
// command.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/attendance"
	"attendance-monitor/internal/auth"
	"attendance-monitor/internal/config"
	"attendance-monitor/internal/logger"
	"attendance-monitor/internal/store"
)

// Models are the tables the application owns.
func Models() []any {
	return []any{&account.Account{}, &attendance.Record{}}
}

// Logger configures the process logger from cfg.
func Logger(cfg config.App) zerolog.Logger {
	return logger.Configure(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogFormat == "text",
	})
}

// Prepare migrates the schema and makes sure the default admin exists.
func Prepare(ctx context.Context, cfg config.App, db *store.DB, lg zerolog.Logger) (*account.Service, error) {
	if err := db.Migrate(Models()...); err != nil {
		return nil, err
	}
	accounts := account.NewService(account.NewRepository(db.Gorm), auth.NewBcrypt(cfg.BcryptCost), lg)
	created, err := accounts.EnsureDefaultAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("ensure default admin: %w", err)
	}
	if created {
		lg.Warn().Str("username", cfg.AdminUsername).Msg("created default admin account; change its password")
	}
	return accounts, nil
}
