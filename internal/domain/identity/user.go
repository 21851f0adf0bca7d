package identity

import (
	"strings"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
)

// User represents an operator account.
// Accounts start unapproved and cannot authenticate until an administrator
// approves them.
type User struct {
	shared.BaseAggregateRoot
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	FullName     string `gorm:"type:varchar(100);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsApproved   bool   `gorm:"not null;default:false"`
	IsAdmin      bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new unapproved, non-admin user
func NewUser(username, email, fullName, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Username cannot be empty")
	}
	if len(username) > 50 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Username cannot exceed 50 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_INPUT", "A valid email address is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Full name cannot be empty")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Password hash cannot be empty")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		FullName:          fullName,
		PasswordHash:      passwordHash,
		IsApproved:        false,
		IsAdmin:           false,
	}, nil
}

// Approve marks the user as approved so they can log in
func (u *User) Approve() error {
	if u.IsApproved {
		return shared.NewDomainError("CONFLICT", "User is already approved")
	}
	u.IsApproved = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// PromoteToAdmin grants administrator privileges
func (u *User) PromoteToAdmin() {
	u.IsAdmin = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// CanLogin returns true if the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsApproved
}
