//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/estatehub/estate-api/internal/errors"
)

const (
	maxPropertyFieldLen = 255
	maxPropertyInfoLen  = 2000
	maxPropertyImages   = 20
)

// PropertyType is the kind of dwelling being listed.
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeTownhouse PropertyType = "townhouse"
)

// Valid reports whether the property type is supported.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeTownhouse:
		return true
	default:
		return false
	}
}

// PropertyState distinguishes new builds from resale.
type PropertyState string

const (
	PropertyStateNew       PropertyState = "new"
	PropertyStateSecondary PropertyState = "secondary"
)

// Valid reports whether the property state is supported.
func (s PropertyState) Valid() bool {
	return s == PropertyStateNew || s == PropertyStateSecondary
}

// ParsePropertyType normalizes a type string and reports whether it is supported.
func ParsePropertyType(value string) (PropertyType, bool) {
	t := PropertyType(strings.ToLower(strings.TrimSpace(value)))
	return t, t.Valid()
}

// ParsePropertyState normalizes a state string and reports whether it is supported.
func ParsePropertyState(value string) (PropertyState, bool) {
	s := PropertyState(strings.ToLower(strings.TrimSpace(value)))
	return s, s.Valid()
}

// Author is the listing owner's public contact block.
type Author struct {
	Email       string `json:"email"       db:"author_email"`
	Name        string `json:"name"        db:"author_name"`
	Surname     string `json:"surname"     db:"author_surname"`
	PhoneNumber string `json:"phonenumber" db:"author_phonenumber"`
}

// Property is a marketplace listing.
type Property struct {
	ID        string        `json:"id"         db:"id"`
	Type      PropertyType  `json:"type"       db:"type"`
	State     PropertyState `json:"state"      db:"state"`
	Price     string        `json:"price"      db:"price"`
	Address   string        `json:"address"    db:"address"`
	Area      string        `json:"area"       db:"area"`
	Rooms     string        `json:"rooms"      db:"rooms"`
	Floor     string        `json:"floor"      db:"floor"`
	Images    []string      `json:"images"     db:"images"`
	Info      string        `json:"info"       db:"info"`
	AuthorID  string        `json:"author_id"  db:"author_id"`
	Author    Author        `json:"author"     db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID authored the listing.
func (p *Property) OwnedBy(userID string) bool {
	return p != nil && userID != "" && p.AuthorID == userID
}

// CreatePropertyRequest is the payload for a new listing.
type CreatePropertyRequest struct {
	Type    string   `json:"type"`
	State   string   `json:"state"`
	Price   string   `json:"price"`
	Address string   `json:"address"`
	Area    string   `json:"area"`
	Rooms   string   `json:"rooms"`
	Floor   string   `json:"floor"`
	Images  []string `json:"images"`
	Info    string   `json:"info,omitempty"`
}

// Validate normalizes and validates the payload in place.
func (r *CreatePropertyRequest) Validate() error {
	if _, ok := ParsePropertyType(r.Type); !ok {
		return apperrors.ValidationField("type", "type must be one of: house, apartment, townhouse")
	}
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if _, ok := ParsePropertyState(r.State); !ok {
		return apperrors.ValidationField("state", "state must be one of: new, secondary")
	}
	r.State = strings.ToLower(strings.TrimSpace(r.State))

	required := []struct {
		field string
		value *string
	}{
		{"price", &r.Price},
		{"address", &r.Address},
		{"area", &r.Area},
		{"rooms", &r.Rooms},
		{"floor", &r.Floor},
	}
	for _, f := range required {
		v, err := requiredField(f.field, *f.value)
		if err != nil {
			return err
		}
		*f.value = v
	}

	images, err := normalizeImages(r.Images)
	if err != nil {
		return err
	}
	r.Images = images

	r.Info = strings.TrimSpace(r.Info)
	if utf8.RuneCountInString(r.Info) > maxPropertyInfoLen {
		return apperrors.ValidationField("info", "info cannot exceed 2000 characters")
	}
	return nil
}

// UpdatePropertyRequest is a partial listing update. Nil fields are left unchanged.
type UpdatePropertyRequest struct {
	Type    *string   `json:"type,omitempty"`
	State   *string   `json:"state,omitempty"`
	Price   *string   `json:"price,omitempty"`
	Address *string   `json:"address,omitempty"`
	Area    *string   `json:"area,omitempty"`
	Rooms   *string   `json:"rooms,omitempty"`
	Floor   *string   `json:"floor,omitempty"`
	Images  *[]string `json:"images,omitempty"`
	Info    *string   `json:"info,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdatePropertyRequest) HasUpdates() bool {
	return r.Type != nil || r.State != nil || r.Price != nil || r.Address != nil || r.Area != nil ||
		r.Rooms != nil || r.Floor != nil || r.Images != nil || r.Info != nil
}

// Validate normalizes the set fields in place.
func (r *UpdatePropertyRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be updated")
	}
	if r.Type != nil {
		t, ok := ParsePropertyType(*r.Type)
		if !ok {
			return apperrors.ValidationField("type", "type must be one of: house, apartment, townhouse")
		}
		v := string(t)
		r.Type = &v
	}
	if r.State != nil {
		s, ok := ParsePropertyState(*r.State)
		if !ok {
			return apperrors.ValidationField("state", "state must be one of: new, secondary")
		}
		v := string(s)
		r.State = &v
	}
	for _, f := range []struct {
		field string
		value **string
	}{
		{"price", &r.Price},
		{"address", &r.Address},
		{"area", &r.Area},
		{"rooms", &r.Rooms},
		{"floor", &r.Floor},
	} {
		if *f.value == nil {
			continue
		}
		v, err := requiredField(f.field, **f.value)
		if err != nil {
			return err
		}
		*f.value = &v
	}
	if r.Images != nil {
		images, err := normalizeImages(*r.Images)
		if err != nil {
			return err
		}
		r.Images = &images
	}
	if r.Info != nil {
		v := strings.TrimSpace(*r.Info)
		if utf8.RuneCountInString(v) > maxPropertyInfoLen {
			return apperrors.ValidationField("info", "info cannot exceed 2000 characters")
		}
		r.Info = &v
	}
	return nil
}

// PropertyListOptions controls paging and filtering for listing properties.
type PropertyListOptions struct {
	Limit       int
	Offset      int
	Type        *PropertyType
	State       *PropertyState
	AuthorEmail *string
	IDs         []string
}

func requiredField(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", apperrors.ValidationField(field, field+" is required and cannot be empty")
	}
	if utf8.RuneCountInString(v) > maxPropertyFieldLen {
		return "", apperrors.ValidationField(field, field+" cannot exceed 255 characters")
	}
	return v, nil
}

func normalizeImages(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, img := range raw {
		if v := strings.TrimSpace(img); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.ValidationField("images", "images of property are required")
	}
	if len(out) > maxPropertyImages {
		return nil, apperrors.ValidationField("images", "images cannot exceed 20 entries")
	}
	return out, nil
}
