package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a wallet account
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Balance      decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// NormalizeEmail lowercases and trims an email so lookups are stable
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the user
func (u *User) Validate() error {
	if err := u.ValidateEmail(); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrInvalidPasswordHash
	}
	if u.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}

// ValidateEmail validates only the email field
func (u *User) ValidateEmail() error {
	if u.Email == "" || !emailRegex.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword checks if the provided password matches the stored hash
func (u *User) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return ErrInvalidPassword
		}
		return fmt.Errorf("failed to check password: %w", err)
	}
	return nil
}

// Credit adds amount to the balance
func (u *User) Credit(amount decimal.Decimal, at time.Time) {
	u.Balance = u.Balance.Add(amount)
	u.UpdatedAt = at
}

// Debit removes amount from the balance. It never goes below zero.
func (u *User) Debit(amount decimal.Decimal, at time.Time) error {
	next := u.Balance.Sub(amount)
	if next.IsNegative() {
		return ErrNegativeBalance
	}
	u.Balance = next
	u.UpdatedAt = at
	return nil
}

// UpdateLastLogin updates the last login timestamp
func (u *User) UpdateLastLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}
