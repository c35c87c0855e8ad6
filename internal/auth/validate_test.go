package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/models"
)

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		Name:            "Jane Roe",
		Email:           "jane@example.com",
		Phone:           "+1 555 123 4567",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestService_ValidateSignup(t *testing.T) {
	service := NewService("", 0)

	tests := []struct {
		name   string
		modify func(*models.SignupRequest)
		field  string
		msg    string
	}{
		{"valid", func(*models.SignupRequest) {}, "", ""},
		{"missing name", func(r *models.SignupRequest) { r.Name = "" }, "name", "Name is required"},
		{"missing email", func(r *models.SignupRequest) { r.Email = "" }, "email", "Email is required"},
		{"bad email", func(r *models.SignupRequest) { r.Email = "jane.example.com" }, "email", "Please enter a valid email"},
		{"missing phone", func(r *models.SignupRequest) { r.Phone = "" }, "phone", "Phone number is required"},
		{"bad phone", func(r *models.SignupRequest) { r.Phone = "0123" }, "phone", "Please enter a valid phone number"},
		{"phone without plus", func(r *models.SignupRequest) { r.Phone = "15551234567" }, "", ""},
		{"short password", func(r *models.SignupRequest) { r.Password, r.ConfirmPassword = "short", "short" }, "password", "Password must be at least 8 characters"},
		{"mismatch", func(r *models.SignupRequest) { r.ConfirmPassword = "password124" }, "confirmPassword", "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.modify(&req)
			err := service.ValidateSignup(req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.msg, ve.Fields[tt.field])
		})
	}
}

func TestService_ValidateSignup_ReportsEveryField(t *testing.T) {
	service := NewService("", 0)
	err := service.ValidateSignup(models.SignupRequest{ConfirmPassword: "x"})

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 5)
	assert.Contains(t, ve.Error(), "confirmPassword")
}

func TestService_ValidateLogin(t *testing.T) {
	service := NewService("", 0)

	assert.NoError(t, service.ValidateLogin(models.LoginRequest{Email: "john.doe@example.com", Password: "x"}))

	ve, ok := AsValidationError(service.ValidateLogin(models.LoginRequest{Email: "nope"}))
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
}

func TestService_ValidateProfile(t *testing.T) {
	service := NewService("", 0)
	empty := ""
	badEmail := "not-an-email"
	phone := "+44 20 7946 0958"

	assert.NoError(t, service.ValidateProfile(models.ProfileUpdate{Phone: &phone}, nil))

	ve, ok := AsValidationError(service.ValidateProfile(models.ProfileUpdate{Name: &empty, Email: &badEmail}, nil))
	require.True(t, ok)
	assert.Equal(t, "Name is required", ve.Fields["name"])
	assert.Equal(t, "Please enter a valid email", ve.Fields["email"])

	merged := &models.User{PaymentMethods: []models.PaymentMethod{{ID: "a", IsDefault: true}, {ID: "b", IsDefault: true}}}
	ve, ok = AsValidationError(service.ValidateProfile(models.ProfileUpdate{}, merged))
	require.True(t, ok)
	assert.Contains(t, ve.Fields["profile"], "default payment")
}
