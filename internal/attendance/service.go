package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/apperrors"
	"attendance-monitor/internal/metrics"
	"attendance-monitor/internal/store"
)

const alreadySubmitted = "You have already submitted attendance for this session today."

// Store is the persistence the service needs. *Repository implements it.
type Store interface {
	Find(ctx context.Context, accountID uint, day time.Time, session Session) (*Record, error)
	Create(ctx context.Context, rec *Record) error
	ByID(ctx context.Context, id uint) (*Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	ListByAccount(ctx context.Context, accountID uint) ([]Record, error)
	ListForAccounts(ctx context.Context, ids []uint) (map[uint][]Record, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	StatusCounts(ctx context.Context) ([]StatusCount, error)
}

// Service coordinates submissions and owner-or-admin access to records.
type Service struct {
	repo Store
	now  func() time.Time
	lg   zerolog.Logger
}

// NewService creates a service backed by a repository.
func NewService(repo Store, lg zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		lg:   lg.With().Str("component", "attendance").Logger(),
	}
}

// WithClock replaces the clock used to pick today's date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit records attendance for owner for today.
func (s *Service) Submit(ctx context.Context, owner account.Account, session, status string) (Record, error) {
	return s.SubmitOn(ctx, owner, s.now(), session, status)
}

// SubmitOn records attendance for owner on the day containing date. A second
// submission for the same day and session is a conflict.
func (s *Service) SubmitOn(ctx context.Context, owner account.Account, date time.Time, session, status string) (Record, error) {
	sess, ok := ParseSession(session)
	if !ok {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return Record{}, apperrors.Validation("session must be morning or afternoon")
	}
	status, err := cleanStatus(status)
	if err != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return Record{}, err
	}
	day := Day(date)

	existing, err := s.repo.Find(ctx, owner.ID, day, sess)
	if err != nil {
		return Record{}, fmt.Errorf("lookup attendance: %w", err)
	}
	if existing != nil {
		metrics.Submissions.WithLabelValues("conflict").Inc()
		return Record{}, apperrors.Conflict(alreadySubmitted)
	}

	rec := Record{Date: day, Session: sess, Status: status, AccountID: owner.ID}
	if err := s.repo.Create(ctx, &rec); err != nil {
		if store.IsUniqueViolation(err) {
			metrics.Submissions.WithLabelValues("conflict").Inc()
			return Record{}, apperrors.Conflict(alreadySubmitted)
		}
		return Record{}, fmt.Errorf("create attendance: %w", err)
	}
	rec.Account = &owner

	metrics.Submissions.WithLabelValues("created").Inc()
	s.lg.Info().Uint("accountID", owner.ID).Uint("recordID", rec.ID).
		Str("date", day.Format(time.DateOnly)).Str("session", string(sess)).Msg("attendance submitted")
	return rec, nil
}

func cleanStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return "", apperrors.Validation("status is required")
	}
	if len(status) > maxStatusLen {
		return "", apperrors.Validation(fmt.Sprintf("status must be at most %d characters", maxStatusLen))
	}
	return status, nil
}

// List returns every record for an admin and only their own for anyone else.
func (s *Service) List(ctx context.Context, requester account.Account) ([]Record, error) {
	var (
		recs []Record
		err  error
	)
	if account.IsAdmin(requester) {
		recs, err = s.repo.ListAll(ctx)
	} else {
		recs, err = s.repo.ListByAccount(ctx, requester.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return recs, nil
}

// ListOwn returns owner's records regardless of role.
func (s *Service) ListOwn(ctx context.Context, owner account.Account) ([]Record, error) {
	recs, err := s.repo.ListByAccount(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list own attendance: %w", err)
	}
	return recs, nil
}

// ListForAccounts groups the records of ids by owner.
func (s *Service) ListForAccounts(ctx context.Context, ids []uint) (map[uint][]Record, error) {
	out, err := s.repo.ListForAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list attendance by account: %w", err)
	}
	return out, nil
}

// StatusCounts tallies every record by status.
func (s *Service) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	out, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	return out, nil
}

// Get loads record id if requester owns it or is an admin.
func (s *Service) Get(ctx context.Context, id uint, requester account.Account) (Record, error) {
	rec, err := s.repo.ByID(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("load attendance %d: %w", id, err)
	}
	if rec == nil {
		return Record{}, apperrors.NotFound("attendance record not found")
	}
	if rec.AccountID != requester.ID && !account.IsAdmin(requester) {
		return Record{}, apperrors.Forbidden("You are not authorized to access this record.")
	}
	return *rec, nil
}

// Edit overwrites the status of record id.
func (s *Service) Edit(ctx context.Context, id uint, status string, requester account.Account) (Record, error) {
	rec, err := s.Get(ctx, id, requester)
	if err != nil {
		return Record{}, deniedAs(err, "edit")
	}
	status, err = cleanStatus(status)
	if err != nil {
		return Record{}, err
	}
	if err := s.repo.UpdateStatus(ctx, rec.ID, status); err != nil {
		return Record{}, fmt.Errorf("update attendance %d: %w", id, err)
	}
	rec.Status = status
	s.lg.Info().Uint("recordID", rec.ID).Uint("by", requester.ID).Str("status", status).Msg("attendance edited")
	return rec, nil
}

// Delete removes record id permanently.
func (s *Service) Delete(ctx context.Context, id uint, requester account.Account) error {
	rec, err := s.Get(ctx, id, requester)
	if err != nil {
		return deniedAs(err, "delete")
	}
	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete attendance %d: %w", id, err)
	}
	s.lg.Info().Uint("recordID", rec.ID).Uint("owner", rec.AccountID).Uint("by", requester.ID).Msg("attendance deleted")
	return nil
}

// deniedAs rewords a forbidden error for the attempted action.
func deniedAs(err error, action string) error {
	if errors.Is(err, apperrors.ErrForbidden) {
		return apperrors.Forbidden("You are not authorized to " + action + " this record.")
	}
	return err
}
