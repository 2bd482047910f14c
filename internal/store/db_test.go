package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"attendance-monitor/internal/logger"
	"attendance-monitor/internal/store"
	"attendance-monitor/internal/storetest"
)

type slot struct {
	ID    uint   `gorm:"primaryKey"`
	Owner uint   `gorm:"not null;uniqueIndex:idx_slot_owner_day"`
	Day   string `gorm:"size:10;not null;uniqueIndex:idx_slot_owner_day"`
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := store.NewDB("oracle", "whatever", logger.Nop())
	assert.Error(t, err)
}

func TestSQLite_UniqueViolationIsDetected(t *testing.T) {
	db := storetest.Open(t, &slot{})

	require.NoError(t, db.Gorm.Create(&slot{Owner: 1, Day: "2024-01-01"}).Error)
	require.NoError(t, db.Gorm.Create(&slot{Owner: 1, Day: "2024-01-02"}).Error)

	err := db.Gorm.Create(&slot{Owner: 1, Day: "2024-01-01"}).Error
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))

	var count int64
	require.NoError(t, db.Gorm.Model(&slot{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.IsUniqueViolation(tt.err))
		})
	}
}

func TestPingAndClose(t *testing.T) {
	db := storetest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, db.Ping(ctx))

	var nilDB *store.DB
	assert.Error(t, nilDB.Ping(ctx))
	assert.NoError(t, nilDB.Close())
}

func TestRedisNilIsUnhealthy(t *testing.T) {
	var r *store.Redis
	assert.False(t, r.Healthy(context.Background()))
	assert.NoError(t, r.Close())
}
