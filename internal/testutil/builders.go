package testutil

import (
	"github.com/estatehub/estate-api/internal/domain/model"
)

// TestPassword satisfies the registration password rules.
const TestPassword = "Sup3r-secret!"

// UserRequestBuilder provides a fluent interface for building CreateUserRequest objects for testing.
type UserRequestBuilder struct {
	req *model.CreateUserRequest
}

// NewUserRequest creates a UserRequestBuilder that passes validation as-is.
func NewUserRequest() *UserRequestBuilder {
	return &UserRequestBuilder{
		req: &model.CreateUserRequest{
			Email:           "jane@example.com",
			Password:        TestPassword,
			PasswordConfirm: TestPassword,
			Name:            "Jane",
			Surname:         "Doe",
			PhoneNumber:     "+380501234567",
		},
	}
}

// WithEmail sets the email.
func (b *UserRequestBuilder) WithEmail(email string) *UserRequestBuilder {
	b.req.Email = email
	return b
}

// WithPassword sets both the password and its confirmation.
func (b *UserRequestBuilder) WithPassword(password string) *UserRequestBuilder {
	b.req.Password = password
	b.req.PasswordConfirm = password
	return b
}

// WithName sets first and last name.
func (b *UserRequestBuilder) WithName(name, surname string) *UserRequestBuilder {
	b.req.Name = name
	b.req.Surname = surname
	return b
}

// WithPhone sets the phone number.
func (b *UserRequestBuilder) WithPhone(phone string) *UserRequestBuilder {
	b.req.PhoneNumber = phone
	return b
}

// Build returns a copy, so one builder can produce several requests.
func (b *UserRequestBuilder) Build() *model.CreateUserRequest {
	req := *b.req
	return &req
}

// PropertyRequestBuilder provides a fluent interface for building CreatePropertyRequest objects for testing.
type PropertyRequestBuilder struct {
	req *model.CreatePropertyRequest
}

// NewPropertyRequest creates a PropertyRequestBuilder for a valid new house listing.
func NewPropertyRequest() *PropertyRequestBuilder {
	return &PropertyRequestBuilder{
		req: &model.CreatePropertyRequest{
			Type:    string(model.PropertyTypeHouse),
			State:   "new",
			Price:   "100000",
			Address: "1 Main St",
			Area:    "80",
			Rooms:   "3",
			Floor:   "2",
			Images:  []string{"https://img.example.com/1.jpg"},
		},
	}
}

// WithType sets the property type.
func (b *PropertyRequestBuilder) WithType(typ string) *PropertyRequestBuilder {
	b.req.Type = typ
	return b
}

// WithState sets the property state.
func (b *PropertyRequestBuilder) WithState(state string) *PropertyRequestBuilder {
	b.req.State = state
	return b
}

// WithPrice sets the price.
func (b *PropertyRequestBuilder) WithPrice(price string) *PropertyRequestBuilder {
	b.req.Price = price
	return b
}

// WithAddress sets the address.
func (b *PropertyRequestBuilder) WithAddress(address string) *PropertyRequestBuilder {
	b.req.Address = address
	return b
}

// Build returns a copy with its own image slice.
func (b *PropertyRequestBuilder) Build() *model.CreatePropertyRequest {
	req := *b.req
	req.Images = append([]string(nil), b.req.Images...)
	return &req
}
