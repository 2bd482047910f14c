package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/config"
	"attendance-monitor/internal/logger"
	"attendance-monitor/internal/store"
)

func TestPrepare_Idempotent(t *testing.T) {
	cfg := config.Defaults()
	cfg.BcryptCost = 4
	db, err := store.NewDB("sqlite", filepath.Join(t.TempDir(), "app.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = Prepare(ctx, cfg, db, logger.Nop())
	require.NoError(t, err)
	accounts, err := Prepare(ctx, cfg, db, logger.Nop())
	require.NoError(t, err)

	admin, err := accounts.Authenticate(ctx, cfg.AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)
	assert.True(t, account.IsAdmin(admin))

	var n int64
	require.NoError(t, db.Gorm.Model(&account.Account{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
