// Package reporting builds the read-only admin views over the attendance
// ledger.
package reporting

import (
	"context"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/apperrors"
	"attendance-monitor/internal/attendance"
)

// Members lists the accounts shown on the dashboard.
type Members interface {
	ListMembers(ctx context.Context) ([]account.Account, error)
}

// Ledger is the part of the attendance service reporting reads from.
type Ledger interface {
	List(ctx context.Context, requester account.Account) ([]attendance.Record, error)
	ListForAccounts(ctx context.Context, ids []uint) (map[uint][]attendance.Record, error)
	StatusCounts(ctx context.Context) ([]attendance.StatusCount, error)
}

// MemberAttendance pairs a member with all of their records.
type MemberAttendance struct {
	Account account.Account
	Records []attendance.Record
}

// Summary counts records by status. Only exact "Present" and "Absent" land in
// the first two buckets.
type Summary struct {
	Present int
	Absent  int
	Other   int
}

func (s Summary) Total() int { return s.Present + s.Absent + s.Other }

// Service answers the dashboard, analytics and report pages.
type Service struct {
	members Members
	ledger  Ledger
}

func NewService(members Members, ledger Ledger) *Service {
	return &Service{members: members, ledger: ledger}
}

var errAdminOnly = apperrors.Forbidden("Access denied. Only the admin can access this page.")

// Dashboard returns every student and instructor with their records.
func (s *Service) Dashboard(ctx context.Context, requester account.Account) ([]MemberAttendance, error) {
	if !account.IsAdmin(requester) {
		return nil, errAdminOnly
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	byOwner, err := s.ledger.ListForAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MemberAttendance, len(members))
	for i, m := range members {
		out[i] = MemberAttendance{Account: m, Records: byOwner[m.ID]}
	}
	return out, nil
}

// Analytics counts present and absent records across the whole ledger.
func (s *Service) Analytics(ctx context.Context, requester account.Account) (Summary, error) {
	if !account.IsAdmin(requester) {
		return Summary{}, errAdminOnly
	}
	counts, err := s.ledger.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, c := range counts {
		switch c.Status {
		case attendance.StatusPresent:
			sum.Present += int(c.Count)
		case attendance.StatusAbsent:
			sum.Absent += int(c.Count)
		default:
			sum.Other += int(c.Count)
		}
	}
	return sum, nil
}

// Report is the raw record list: everything for an admin, own records
// otherwise.
func (s *Service) Report(ctx context.Context, requester account.Account) ([]attendance.Record, error) {
	return s.ledger.List(ctx, requester)
}
