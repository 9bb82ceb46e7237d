package request

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

// Accepted date layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

var errInvalidDate = errors.New("must be an RFC 3339 timestamp or a YYYY-MM-DD date")

// CreateEventRequest carries the client's event payload. Status and createdBy
// are accepted for compatibility and ignored by the server.
type CreateEventRequest struct {
	Title       string `json:"title" example:"Winter Hackathon"`
	Description string `json:"description"`
	Venue       string `json:"venue" example:"Main hall"`
	Rules       string `json:"rules"`
	Thumbnail   string `json:"thumbnail"`
	PrizePool   string `json:"prizePool" example:"$5,000"`
	MaxTeams    int    `json:"maxTeams" example:"50"`
	Status      string `json:"status,omitempty" swaggerignore:"true"`
	CreatedBy   string `json:"createdBy,omitempty" swaggerignore:"true"`
	StartDate   string `json:"startDate" example:"2025-01-01"`
	EndDate     string `json:"endDate" example:"2025-01-02"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.StartDate, validation.Required, validation.By(validateDate)),
		validation.Field(&req.EndDate, validation.Required, validation.By(validateDate)),
	)
}

// ToDomain assumes Validate has passed.
func (req *CreateEventRequest) ToDomain() domain.Event {
	start, _ := parseDate(req.StartDate)
	end, _ := parseDate(req.EndDate)

	return domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Rules:       req.Rules,
		Thumbnail:   req.Thumbnail,
		PrizePool:   req.PrizePool,
		MaxTeams:    req.MaxTeams,
		Status:      domain.EventStatus(req.Status),
		CreatedBy:   req.CreatedBy,
		StartDate:   start,
		EndDate:     end,
	}
}

// UpdateEventRequest is a partial update: absent fields are left unchanged.
// participantCount and createdBy are not updatable and are ignored if sent.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Venue       *string `json:"venue"`
	Rules       *string `json:"rules"`
	Thumbnail   *string `json:"thumbnail"`
	PrizePool   *string `json:"prizePool"`
	MaxTeams    *int    `json:"maxTeams"`
	Status      *string `json:"status" example:"live"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StartDate, validation.By(validateDate)),
		validation.Field(&req.EndDate, validation.By(validateDate)),
	)
}

// ToPatch assumes Validate has passed.
func (req *UpdateEventRequest) ToPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Rules:       req.Rules,
		Thumbnail:   req.Thumbnail,
		PrizePool:   req.PrizePool,
		MaxTeams:    req.MaxTeams,
	}

	if req.Status != nil {
		status := domain.EventStatus(*req.Status)
		patch.Status = &status
	}
	if req.StartDate != nil {
		start, _ := parseDate(*req.StartDate)
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, _ := parseDate(*req.EndDate)
		patch.EndDate = &end
	}

	return patch
}

type RegisterRequest struct {
	TeamName string `json:"teamName" example:"Ninjas"`
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%q: %w", value, errInvalidDate)
}

func validateDate(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}

	if _, err := parseDate(s); err != nil {
		return errInvalidDate
	}

	return nil
}
