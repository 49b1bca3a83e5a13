// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// User represents an account that owns recipes, tags and ingredients.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	Name        string    `json:"name"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsStaff     bool      `gorm:"default:false" json:"-"`
	IsSuperuser bool      `gorm:"default:false" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases the domain portion of an email address while
// preserving the case of the local part.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
