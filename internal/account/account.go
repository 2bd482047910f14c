package account

import (
	"strings"
	"time"
)

// Role is the coarse permission tier of an account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// MemberRoles are the roles an admin may hand out at registration.
var MemberRoles = []Role{RoleStudent, RoleInstructor}

// ParseMemberRole accepts student or instructor, nothing else.
func ParseMemberRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, allowed := range MemberRoles {
		if r == allowed {
			return r, true
		}
	}
	return "", false
}

// Account is a login identity.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex:idx_accounts_username" json:"username"`
	PasswordHash string    `gorm:"size:120;not null" json:"-"`
	Role         Role      `gorm:"size:50;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// IsAdmin is the only admin capability check in the application. It looks at
// the role and nothing else.
func IsAdmin(a Account) bool {
	return a.Role == RoleAdmin
}

// LandingPath is where a freshly logged in account is sent.
func LandingPath(a Account) string {
	if IsAdmin(a) {
		return "/dashboard"
	}
	return "/attendance"
}
