package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is the portal identity record. OTP and reset-token fields travel in
// pairs: both set while a verification or reset is pending, both nil after.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	MatricNumber string    `gorm:"size:50;not null;uniqueIndex" json:"matric"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;default:'student'" json:"role"`
	IsVerified   bool      `gorm:"default:false" json:"is_verified"`

	OTPHash      *string    `gorm:"size:255" json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	ResetToken        *string    `gorm:"size:128;index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	Courses []Course `gorm:"many2many:user_courses" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OTPPending reports whether an email verification code is outstanding.
func (u *User) OTPPending() bool {
	return u.OTPHash != nil && u.OTPExpiresAt != nil
}

// ClearOTP removes the pending verification code.
func (u *User) ClearOTP() {
	u.OTPHash = nil
	u.OTPExpiresAt = nil
}

// ClearResetToken removes the pending password-reset credential.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpires = nil
}
