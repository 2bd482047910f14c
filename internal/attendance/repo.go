package attendance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists attendance records through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// newestFirst orders by date desc, then morning before afternoon.
func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "session"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

// Find returns the record for (accountID, day, session), or nil, nil.
func (r *Repository) Find(ctx context.Context, accountID uint, day time.Time, session Session) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).
		Where(&Record{AccountID: accountID, Date: day, Session: session}).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts rec. Unique violations are returned for the caller to classify.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

// ByID returns nil, nil when the id is unknown.
func (r *Repository) ByID(ctx context.Context, id uint) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).Preload("Account").Take(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAll returns every record with its owner loaded.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	var out []Record
	err := newestFirst(r.db.WithContext(ctx).Preload("Account")).Find(&out).Error
	return out, err
}

// ListByAccount returns the records owned by accountID.
func (r *Repository) ListByAccount(ctx context.Context, accountID uint) ([]Record, error) {
	var out []Record
	err := newestFirst(r.db.WithContext(ctx).Preload("Account")).
		Where("account_id = ?", accountID).
		Find(&out).Error
	return out, err
}

// ListForAccounts returns records owned by any of ids, grouped by owner in
// the map.
func (r *Repository) ListForAccounts(ctx context.Context, ids []uint) (map[uint][]Record, error) {
	out := make(map[uint][]Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recs []Record
	if err := newestFirst(r.db.WithContext(ctx)).Where("account_id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		out[rec.AccountID] = append(out[rec.AccountID], rec)
	}
	return out, nil
}

// UpdateStatus overwrites the status of record id and nothing else.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&Record{ID: id}).Update("status", status).Error
}

// Delete removes record id permanently.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Record{}, id).Error
}

// StatusCount is one row of a GROUP BY status query.
type StatusCount struct {
	Status string
	Count  int64 `gorm:"column:total"`
}

// StatusCounts tallies records by exact status text.
func (r *Repository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	var out []StatusCount
	err := r.db.WithContext(ctx).Model(&Record{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Order("status").
		Scan(&out).Error
	return out, err
}
