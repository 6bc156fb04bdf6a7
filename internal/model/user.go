package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Permission is one entry of the closed permission vocabulary.
type Permission string

const (
	PermissionDashboard Permission = "dashboard"
	PermissionControls  Permission = "controls"
	PermissionEventLog  Permission = "event_log"
	PermissionReport    Permission = "report"
	PermissionAnalytics Permission = "analytics"
	PermissionAdmin     Permission = "admin"
)

// AllPermissions lists the full vocabulary, used for validation and seeding.
var AllPermissions = []Permission{
	PermissionDashboard,
	PermissionControls,
	PermissionEventLog,
	PermissionReport,
	PermissionAnalytics,
	PermissionAdmin,
}

// ValidPermission reports whether p is part of the closed vocabulary.
func ValidPermission(p Permission) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Permissions is a set-valued permission type. It is persisted as
// comma-joined text but never handled as a raw string in the domain.
type Permissions []Permission

// ParsePermissions validates raw permission names against the vocabulary.
func ParsePermissions(raw []string) (Permissions, error) {
	perms := make(Permissions, 0, len(raw))
	for _, r := range raw {
		p := Permission(strings.TrimSpace(r))
		if !ValidPermission(p) {
			return nil, fmt.Errorf("unknown permission %q", r)
		}
		if !perms.Has(p) {
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// Has reports whether the set contains p.
func (ps Permissions) Has(p Permission) bool {
	for _, existing := range ps {
		if existing == p {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer, storing the set as comma-joined text.
func (ps Permissions) Value() (driver.Value, error) {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ","), nil
}

// Scan implements sql.Scanner.
func (ps *Permissions) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*ps = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Permissions", src)
	}

	if raw == "" {
		*ps = Permissions{}
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make(Permissions, 0, len(parts))
	for _, part := range parts {
		out = append(out, Permission(strings.TrimSpace(part)))
	}
	*ps = out
	return nil
}

// User is an operator account with a permission set.
type User struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	Username     string      `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash string      `gorm:"size:128;not null" json:"-"`
	IsAdmin      bool        `gorm:"not null;default:false" json:"is_admin"`
	Permissions  Permissions `gorm:"type:text" json:"permissions"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SetPassword hashes and stores the given password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the given password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
