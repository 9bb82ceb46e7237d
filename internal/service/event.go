package service

import (
	"context"
	"errors"
	"fmt"
	"strings"


	"github.com/yizeng/gab/gin/gorm/event-registration/internal/authz"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/metrics"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository"
)

var (
	ErrEventNotFound        = repository.ErrEventNotFound
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrAlreadyRegistered    = repository.ErrAlreadyRegistered
	ErrForbidden            = authz.ErrForbidden
	ErrUnauthenticated      = authz.ErrUnauthenticated
	ErrInvalidInput         = errors.New("invalid input")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindByStatuses(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id string) error
	RecountParticipants(ctx context.Context, id string) (domain.Event, error)
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	FindByEvent(ctx context.Context, eventID string) ([]domain.Registration, error)
	FindByEventAndUser(ctx context.Context, eventID, userID string) (domain.Registration, error)
	FindByID(ctx context.Context, id string) (domain.Registration, error)
}

type EventService struct {
	repo    EventRepository
	regRepo RegistrationRepository
}

func NewEventService(repo EventRepository, regRepo RegistrationRepository) *EventService {
	return &EventService{
		repo:    repo,
		regRepo: regRepo,
	}
}

// ListPublic returns upcoming, live and past events, earliest start first.
func (s *EventService) ListPublic(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindByStatuses(ctx, domain.PublicStatuses())
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatuses -> %w", err)
	}

	return events, nil
}

// ListAll returns every event including drafts. Admin only.
func (s *EventService) ListAll(ctx context.Context, caller *domain.Identity) ([]domain.Event, error) {
	if err := authz.Authorize(caller, authz.RequireRole(domain.RoleAdmin)); err != nil {
		return nil, err
	}

	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}

func (s *EventService) Get(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// Create stores a new event owned by caller. Status is always upcoming and the
// participant count starts at zero, whatever the payload says.
func (s *EventService) Create(ctx context.Context, event domain.Event, caller *domain.Identity) (domain.Event, error) {
	if err := authz.Authorize(caller, authz.Authenticated()); err != nil {
		return domain.Event{}, err
	}

	event.ID = ""
	event.Status = domain.StatusUpcoming
	event.CreatedBy = caller.ID
	event.ParticipantCount = 0
	if err := event.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	created.Owner = &domain.UserSummary{ID: caller.ID, Name: caller.Name}

	return created, nil
}

func (s *EventService) Update(ctx context.Context, id string, patch domain.EventPatch, caller *domain.Identity) (domain.Event, error) {
	existing, err := s.ownedEvent(ctx, id, caller)
	if err != nil {
		return domain.Event{}, err
	}

	merged := patch.Apply(existing)
	if err = merged.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, id string, caller *domain.Identity) error {
	if _, err := s.ownedEvent(ctx, id, caller); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Register signs caller up for the event. An empty team name falls back to
// the caller's display name.
func (s *EventService) Register(ctx context.Context, eventID, teamName string, caller *domain.Identity) (domain.Registration, error) {
	if err := authz.Authorize(caller, authz.Authenticated()); err != nil {
		return domain.Registration{}, err
	}

	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		teamName = caller.Name
	}

	reg, err := s.regRepo.Create(ctx, domain.Registration{
		EventID:  eventID,
		UserID:   caller.ID,
		TeamName: teamName,
	})
	if err != nil {
		metrics.Registrations.WithLabelValues(registrationOutcome(err)).Inc()
		return domain.Registration{}, fmt.Errorf("s.regRepo.Create -> %w", err)
	}
	metrics.Registrations.WithLabelValues("created").Inc()

	reg.User = &domain.UserSummary{ID: caller.ID, Name: caller.Name, Email: caller.Email}

	return reg, nil
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return "conflict"
	case errors.Is(err, ErrEventNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *EventService) ListRegistrations(ctx context.Context, eventID string, caller *domain.Identity) ([]domain.Registration, error) {
	if _, err := s.ownedEvent(ctx, eventID, caller); err != nil {
		return nil, err
	}

	regs, err := s.regRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.regRepo.FindByEvent -> %w", err)
	}

	return regs, nil
}

// GetRegistration looks up one registration of the event, as scanned from a ticket.
func (s *EventService) GetRegistration(ctx context.Context, eventID, registrationID string, caller *domain.Identity) (domain.Registration, error) {
	if _, err := s.ownedEvent(ctx, eventID, caller); err != nil {
		return domain.Registration{}, err
	}

	reg, err := s.regRepo.FindByID(ctx, registrationID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.regRepo.FindByID -> %w", err)
	}
	if reg.EventID != eventID {
		return domain.Registration{}, ErrRegistrationNotFound
	}

	return reg, nil
}

// MyRegistration returns caller's own registration for the event.
func (s *EventService) MyRegistration(ctx context.Context, eventID string, caller *domain.Identity) (domain.Registration, error) {
	if err := authz.Authorize(caller, authz.Authenticated()); err != nil {
		return domain.Registration{}, err
	}

	reg, err := s.regRepo.FindByEventAndUser(ctx, eventID, caller.ID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.regRepo.FindByEventAndUser -> %w", err)
	}

	return reg, nil
}

// RecountParticipants resets the cached participant count from the stored
// registrations. Admin only.
func (s *EventService) RecountParticipants(ctx context.Context, eventID string, caller *domain.Identity) (domain.Event, error) {
	if err := authz.Authorize(caller, authz.RequireRole(domain.RoleAdmin)); err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.RecountParticipants(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.RecountParticipants -> %w", err)
	}

	return event, nil
}

// ownedEvent loads the event and checks that caller owns it or is an admin.
// A missing event is reported before any authorization failure.
func (s *EventService) ownedEvent(ctx context.Context, id string, caller *domain.Identity) (domain.Event, error) {
	if err := authz.Authorize(caller, authz.Authenticated()); err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = authz.Authorize(caller, authz.OwnerOrAdmin(event.CreatedBy)); err != nil {
		return domain.Event{}, err
	}

	return event, nil
}
