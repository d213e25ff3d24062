// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus tracks whether a principal has completed registration.
type UserStatus string

const (
	// StatusPending indicates a principal created on first sign-in that has
	// not yet chosen a username.
	StatusPending UserStatus = "pending"
	// StatusActive indicates a principal that completed registration.
	StatusActive UserStatus = "active"
)

// UserRole defines the access level of a principal.
type UserRole string

const (
	// RoleUser is the default role assigned at creation.
	RoleUser UserRole = "user"
	// RoleAdmin grants access to the admin panel. Assigned only by another admin.
	RoleAdmin UserRole = "admin"
)

// SocialLinks holds a user's optional social profile URLs.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Education is a résumé entry describing a period of study.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   string `json:"start_year"`
	EndYear     string `json:"end_year,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

// Experience is a résumé entry describing a position held.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

// Certification is a résumé entry for a credential.
type Certification struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	IssueDate     string `json:"issue_date"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	CredentialID  string `json:"credential_id,omitempty"`
	CredentialURL string `json:"credential_url,omitempty"`
}

// Skill is a résumé entry naming a skill and an optional proficiency level.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// User represents a principal: the application-level profile behind an
// identity issued by a third-party provider.
//
// A user is created with status "pending" on first sign-in and becomes
// "active" exactly once, when the registration flow assigns a username.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Provider   string `gorm:"size:32;not null;uniqueIndex:idx_provider_identity" json:"provider"`
	ProviderID string `gorm:"size:128;not null;uniqueIndex:idx_provider_identity" json:"-"`

	Email     string `gorm:"size:255;not null" json:"email"`
	FullName  string `gorm:"size:120;not null" json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `gorm:"type:text" json:"bio"`

	// Username is empty until registration completes. The partial unique
	// index backstops the best-effort pre-check in the service layer.
	Username   string `gorm:"size:32;index:idx_users_username,unique,where:username <> ''" json:"username"`
	Phone      string `gorm:"size:32" json:"phone,omitempty"`
	Profession string `gorm:"size:120" json:"profession,omitempty"`

	Socials SocialLinks `gorm:"serializer:json" json:"socials"`

	Status UserStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Role   UserRole   `gorm:"type:varchar(16);not null;default:'user'" json:"role"`

	Education      []Education     `gorm:"serializer:json" json:"education,omitempty"`
	Experience     []Experience    `gorm:"serializer:json" json:"experience,omitempty"`
	Certifications []Certification `gorm:"serializer:json" json:"certifications,omitempty"`
	Skills         []Skill         `gorm:"serializer:json" json:"skills,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the user completed registration.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Public returns a copy safe for author pages: email and phone are private
// and never leave the owner's own profile responses.
func (u *User) Public() *User {
	pub := *u
	pub.Email = ""
	pub.Phone = ""
	return &pub
}
