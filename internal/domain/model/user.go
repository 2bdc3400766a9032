//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

const (
	minPasswordLen   = 8
	maxPasswordLen   = 32
	maxUserInfoLen   = 500
	maxNameLen       = 100
	rawPhoneLen      = 13
	maxProfilePicLen = 2048
)

// User is a marketplace account.
type User struct {
	ID           string          `json:"id"          db:"id"`
	Email        string          `json:"email"       db:"email"`
	PasswordHash string          `json:"-"           db:"password_hash"`
	Name         string          `json:"name"        db:"name"`
	Surname      string          `json:"surname"     db:"surname"`
	Role         domainauth.Role `json:"role"        db:"role"`
	PhoneNumber  string          `json:"phonenumber" db:"phonenumber"`
	Info         string          `json:"info"        db:"info"`
	ProfilePic   string          `json:"profilepic"  db:"profilepic"`
	Featured     []string        `json:"featured"    db:"featured"`
	CreatedAt    time.Time       `json:"created_at"  db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"  db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == domainauth.RoleAdmin }

// HasFeatured reports whether propertyID is in the user's featured list.
func (u *User) HasFeatured(propertyID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Featured {
		if id == propertyID {
			return true
		}
	}
	return false
}

// Snapshot captures the public profile stored alongside a live session.
func (u *User) Snapshot(issuedAt time.Time) domainauth.Session {
	return domainauth.Session{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Surname:     u.Surname,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IssuedAt:    issuedAt.UTC(),
	}
}

// Author returns the denormalised contact block shown on listings.
func (u *User) Author() Author {
	return Author{
		Email:       u.Email,
		Name:        u.Name,
		Surname:     u.Surname,
		PhoneNumber: u.PhoneNumber,
	}
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	PhoneNumber     string `json:"phonenumber"`
	Info            string `json:"info,omitempty"`
	ProfilePic      string `json:"profilepic,omitempty"`
}

// Validate normalizes and validates the registration payload in place.
func (r *CreateUserRequest) Validate() error {
	email, err := NormalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	r.Password = strings.TrimSpace(r.Password)
	r.PasswordConfirm = strings.TrimSpace(r.PasswordConfirm)
	if pwErr := validatePassword(r.Password, r.PasswordConfirm); pwErr != nil {
		return pwErr
	}

	r.Name = strings.TrimSpace(r.Name)
	if nameErr := validateName("name", r.Name); nameErr != nil {
		return nameErr
	}
	r.Surname = strings.TrimSpace(r.Surname)
	if nameErr := validateName("surname", r.Surname); nameErr != nil {
		return nameErr
	}

	phone, err := FormatPhoneNumber(r.PhoneNumber)
	if err != nil {
		return err
	}
	r.PhoneNumber = phone

	r.Info = strings.TrimSpace(r.Info)
	if utf8.RuneCountInString(r.Info) > maxUserInfoLen {
		return apperrors.ValidationField("info", "info must be less than or equal to 500 characters")
	}
	r.ProfilePic = strings.TrimSpace(r.ProfilePic)
	if len(r.ProfilePic) > maxProfilePicLen {
		return apperrors.ValidationField("profilepic", "profilepic cannot exceed 2048 characters")
	}
	return nil
}

// UpdateUserRequest is a partial profile update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Password        *string `json:"password,omitempty"`
	PasswordConfirm *string `json:"password_confirm,omitempty"`
	Name            *string `json:"name,omitempty"`
	Surname         *string `json:"surname,omitempty"`
	PhoneNumber     *string `json:"phonenumber,omitempty"`
	Info            *string `json:"info,omitempty"`
	ProfilePic      *string `json:"profilepic,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Password != nil || r.Name != nil || r.Surname != nil || r.PhoneNumber != nil ||
		r.Info != nil || r.ProfilePic != nil
}

// Validate normalizes the set fields in place.
func (r *UpdateUserRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be updated")
	}
	if r.Password != nil {
		pw := strings.TrimSpace(*r.Password)
		confirm := ""
		if r.PasswordConfirm != nil {
			confirm = strings.TrimSpace(*r.PasswordConfirm)
		}
		if err := validatePassword(pw, confirm); err != nil {
			return err
		}
		r.Password = &pw
	}
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		if err := validateName("name", v); err != nil {
			return err
		}
		r.Name = &v
	}
	if r.Surname != nil {
		v := strings.TrimSpace(*r.Surname)
		if err := validateName("surname", v); err != nil {
			return err
		}
		r.Surname = &v
	}
	if r.PhoneNumber != nil {
		v, err := FormatPhoneNumber(*r.PhoneNumber)
		if err != nil {
			return err
		}
		r.PhoneNumber = &v
	}
	if r.Info != nil {
		v := strings.TrimSpace(*r.Info)
		if utf8.RuneCountInString(v) > maxUserInfoLen {
			return apperrors.ValidationField("info", "info must be less than or equal to 500 characters")
		}
		r.Info = &v
	}
	if r.ProfilePic != nil {
		v := strings.TrimSpace(*r.ProfilePic)
		if len(v) > maxProfilePicLen {
			return apperrors.ValidationField("profilepic", "profilepic cannot exceed 2048 characters")
		}
		r.ProfilePic = &v
	}
	return nil
}

// LoginRequest carries user credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail trims and lower-cases an address and checks that it parses.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.ValidationField("email", "email is required and cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.ValidationField("email", "invalid email")
	}
	return email, nil
}

// FormatPhoneNumber accepts "+" followed by twelve digits and returns it grouped
// as +xx-xxx-xxx-xx-xx.
func FormatPhoneNumber(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) != rawPhoneLen {
		return "", apperrors.ValidationField("phonenumber", "phone number must be 12 digits only")
	}
	if v[0] != '+' {
		return "", apperrors.ValidationField("phonenumber", "phone number must start with +")
	}
	for _, c := range v[1:] {
		if c < '0' || c > '9' {
			return "", apperrors.ValidationField("phonenumber", "only plus at the beginning and numbers are allowed")
		}
	}
	return v[0:3] + "-" + v[3:6] + "-" + v[6:9] + "-" + v[9:11] + "-" + v[11:], nil
}

func validatePassword(pw, confirm string) error {
	n := utf8.RuneCountInString(pw)
	if n < minPasswordLen {
		return apperrors.ValidationField("password", "password must be at least 8 characters")
	}
	if n > maxPasswordLen {
		return apperrors.ValidationField("password", "password cannot exceed 32 characters")
	}
	if pw != confirm {
		return apperrors.ValidationField("password_confirm", "passwords don't match")
	}
	return nil
}

func validateName(field, v string) error {
	if v == "" {
		return apperrors.ValidationField(field, field+" is required and cannot be empty")
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return apperrors.ValidationField(field, field+" cannot exceed 100 characters")
	}
	return nil
}
