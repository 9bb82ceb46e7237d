package domain

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusUpcoming  EventStatus = "upcoming"
	StatusLive      EventStatus = "live"
	StatusPast      EventStatus = "past"
	StatusCancelled EventStatus = "cancelled"
)

const maxThumbnailLen = 7 << 20

var errInvalidThumbnail = errors.New("must be an http(s) URL or an image data URI")

func (s EventStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUpcoming, StatusLive, StatusPast, StatusCancelled:
		return true
	}

	return false
}

// PublicStatuses lists the statuses visible to unauthenticated callers.
func PublicStatuses() []EventStatus {
	return []EventStatus{StatusUpcoming, StatusLive, StatusPast}
}

type Event struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Venue            string       `json:"venue"`
	Rules            string       `json:"rules"`
	Thumbnail        string       `json:"thumbnail"`
	PrizePool        string       `json:"prizePool"`
	MaxTeams         int          `json:"maxTeams"`
	Status           EventStatus  `json:"status"`
	StartDate        time.Time    `json:"startDate"`
	EndDate          time.Time    `json:"endDate"`
	CreatedBy        string       `json:"createdBy"`
	Owner            *UserSummary `json:"owner,omitempty"`
	ParticipantCount int          `json:"participantCount"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Validate checks the shape of the event. It does not compare
// StartDate with EndDate and does not look at registrations.
func (e Event) Validate() error {
	return validation.ValidateStruct(
		&e,
		validation.Field(&e.Title, validation.Required, validation.Length(3, 120)),
		validation.Field(&e.Description, validation.Length(0, 5000)),
		validation.Field(&e.Venue, validation.Length(0, 200)),
		validation.Field(&e.Rules, validation.Length(0, 10000)),
		validation.Field(&e.Thumbnail, validation.Length(0, maxThumbnailLen), validation.By(validateThumbnail)),
		validation.Field(&e.PrizePool, validation.Length(0, 200)),
		validation.Field(&e.MaxTeams, validation.Min(0)),
		validation.Field(&e.Status, validation.Required, validation.In(
			StatusDraft, StatusUpcoming, StatusLive, StatusPast, StatusCancelled,
		)),
		validation.Field(&e.StartDate, validation.Required),
		validation.Field(&e.EndDate, validation.Required),
	)
}

func validateThumbnail(value interface{}) error {
	s, _ := value.(string)
	if s == "" || strings.HasPrefix(s, "data:image/") {
		return nil
	}
	if err := is.URL.Validate(s); err != nil {
		return errInvalidThumbnail
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errInvalidThumbnail
	}

	return nil
}

// EventPatch is a partial update. Nil fields keep the current value.
type EventPatch struct {
	Title       *string
	Description *string
	Venue       *string
	Rules       *string
	Thumbnail   *string
	PrizePool   *string
	MaxTeams    *int
	Status      *EventStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// Apply returns e with every non-nil field of p written over it. Identity,
// ownership and the participant counter are never touched.
func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Venue != nil {
		e.Venue = *p.Venue
	}
	if p.Rules != nil {
		e.Rules = *p.Rules
	}
	if p.Thumbnail != nil {
		e.Thumbnail = *p.Thumbnail
	}
	if p.PrizePool != nil {
		e.PrizePool = *p.PrizePool
	}
	if p.MaxTeams != nil {
		e.MaxTeams = *p.MaxTeams
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}

	return e
}
