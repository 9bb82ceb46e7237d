package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	FindByStatuses(ctx context.Context, statuses []string) ([]dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id string) error
	RecountParticipants(ctx context.Context, id string) (dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDaoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventDaoToDomain(found), nil
}

func (r *EventRepository) FindByStatuses(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	found, err := r.dao.FindByStatuses(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatuses -> %w", err)
	}

	return eventsDaoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return eventsDaoToDomain(found), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return eventDaoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) RecountParticipants(ctx context.Context, id string) (domain.Event, error) {
	recounted, err := r.dao.RecountParticipants(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.RecountParticipants -> %w", err)
	}

	return eventDaoToDomain(recounted), nil
}

func eventDomainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Venue:            e.Venue,
		Rules:            e.Rules,
		Thumbnail:        e.Thumbnail,
		PrizePool:        e.PrizePool,
		MaxTeams:         e.MaxTeams,
		Status:           string(e.Status),
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		CreatedBy:        e.CreatedBy,
		ParticipantCount: e.ParticipantCount,
	}
}

func eventDaoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Venue:            e.Venue,
		Rules:            e.Rules,
		Thumbnail:        e.Thumbnail,
		PrizePool:        e.PrizePool,
		MaxTeams:         e.MaxTeams,
		Status:           domain.EventStatus(e.Status),
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		CreatedBy:        e.CreatedBy,
		Owner:            userSummary(e.Owner),
		ParticipantCount: e.ParticipantCount,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func eventsDaoToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, 0, len(events))
	for _, e := range events {
		result = append(result, eventDaoToDomain(e))
	}

	return result
}
