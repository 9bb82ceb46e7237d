package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
	"github.com/yizeng/gab/gin/gorm/event-registration/internal/repository/dao"
)

var (
	ErrAlreadyRegistered    = dao.ErrAlreadyRegistered
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByEvent(ctx context.Context, eventID string) ([]dao.Registration, error)
	FindByEventAndUser(ctx context.Context, eventID, userID string) (dao.Registration, error)
	FindByID(ctx context.Context, id string) (dao.Registration, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

// Create stores reg and increments the event's participant count atomically.
func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, dao.Registration{
		EventID:  reg.EventID,
		UserID:   reg.UserID,
		TeamName: reg.TeamName,
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return registrationDaoToDomain(created), nil
}

func (r *RegistrationRepository) FindByEvent(ctx context.Context, eventID string) ([]domain.Registration, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	result := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		result = append(result, registrationDaoToDomain(reg))
	}

	return result, nil
}

func (r *RegistrationRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (domain.Registration, error) {
	found, err := r.dao.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByEventAndUser -> %w", err)
	}

	return registrationDaoToDomain(found), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return registrationDaoToDomain(found), nil
}

func registrationDaoToDomain(r dao.Registration) domain.Registration {
	return domain.Registration{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		User:      userSummary(r.User),
		TeamName:  r.TeamName,
		CreatedAt: r.CreatedAt,
	}
}
