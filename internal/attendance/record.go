package attendance

import (
	"strings"
	"time"

	"attendance-monitor/internal/account"
)

// Session is the half of the day a record belongs to.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
)

// Sessions lists the valid sessions in display order.
var Sessions = []Session{SessionMorning, SessionAfternoon}

// ParseSession accepts morning or afternoon in any case.
func ParseSession(s string) (Session, bool) {
	v := Session(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v, true
	}
	return "", false
}

func (s Session) Valid() bool {
	return s == SessionMorning || s == SessionAfternoon
}

// Label is the capitalized form shown in pages.
func (s Session) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"

	maxStatusLen = 20
)

// Record is one attendance entry. (AccountID, Date, Session) is unique.
type Record struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Date      time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_account_date_session,priority:2" json:"date"`
	Session   Session          `gorm:"size:50;not null;uniqueIndex:idx_attendance_account_date_session,priority:3" json:"session"`
	Status    string           `gorm:"size:20;not null" json:"status"`
	AccountID uint             `gorm:"not null;index;uniqueIndex:idx_attendance_account_date_session,priority:1" json:"account_id"`
	Account   *account.Account `gorm:"constraint:OnDelete:RESTRICT" json:"account,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Record) TableName() string { return "attendance_records" }

// Day truncates t to midnight UTC, the form dates are stored in.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Owner returns the username of the record's account, if it was loaded.
func (r Record) Owner() string {
	if r.Account == nil {
		return ""
	}
	return r.Account.Username
}
