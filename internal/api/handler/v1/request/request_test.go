package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

func TestSignupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr string
	}{
		{
			name: "valid student",
			req:  SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"},
		},
		{
			name: "valid organiser with confirmation",
			req:  SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123", ConfirmPassword: "secret123", Role: "organiser"},
		},
		{
			name:    "admin role",
			req:     SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123", Role: "admin"},
			wantErr: "role: must be a valid value.",
		},
		{
			name:    "bad email",
			req:     SignupRequest{Name: "Ada", Email: "nope", Password: "secret123"},
			wantErr: "email: must be a valid email address.",
		},
		{
			name:    "password without digit",
			req:     SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secretsecret"},
			wantErr: errInvalidPassword.Error(),
		},
		{
			name:    "short password",
			req:     SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "abc1"},
			wantErr: errInvalidPassword.Error(),
		},
		{
			name:    "mismatched confirmation",
			req:     SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123", ConfirmPassword: "secret124"},
			wantErr: errConfirmPasswordMismatch.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSignupRequest_DefaultsRole(t *testing.T) {
	req := SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "student", req.Role)
}

func TestCreateEventRequest(t *testing.T) {
	req := CreateEventRequest{
		Title:     "Winter Hackathon",
		Status:    "draft",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-02T18:30:00+02:00",
	}
	require.NoError(t, req.Validate())

	event := req.ToDomain()
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), event.StartDate)
	assert.Equal(t, time.Date(2025, 1, 2, 16, 30, 0, 0, time.UTC), event.EndDate)
	assert.Equal(t, domain.StatusDraft, event.Status, "the service decides the final status")

	req.StartDate = "01/01/2025"
	assert.Error(t, req.Validate())

	req = CreateEventRequest{StartDate: "2025-01-01", EndDate: "2025-01-02"}
	assert.EqualError(t, req.Validate(), "title: cannot be blank.")
}

func TestUpdateEventRequest(t *testing.T) {
	title, status, start := "Renamed", "live", "2025-02-03T10:00"
	req := UpdateEventRequest{Title: &title, Status: &status, StartDate: &start}
	require.NoError(t, req.Validate())

	patch := req.ToPatch()
	assert.Equal(t, "Renamed", *patch.Title)
	assert.Equal(t, domain.StatusLive, *patch.Status)
	assert.Equal(t, time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC), *patch.StartDate)
	assert.Nil(t, patch.EndDate)
	assert.Nil(t, patch.Venue)

	bad := "tomorrow"
	req = UpdateEventRequest{EndDate: &bad}
	assert.Error(t, req.Validate())

	assert.NoError(t, (&UpdateEventRequest{}).Validate())
}
