package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/metrics"
)

var (
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrRegistrationNotFound = errors.New("registration not found")
)

const registrationUniqueIndex = "idx_registrations_event_user"

// Registration has no foreign key to events: deleting an event leaves its
// registrations in place.
type Registration struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	EventID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user,priority:1"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user,priority:2"`
	User      *User     `gorm:"foreignKey:UserID"`
	TeamName  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (r *Registration) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	return nil
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Insert stores reg and bumps the event's participant_count in one transaction.
// The counter update runs first so concurrent registrations for the same event
// queue on its row lock; the unique index on (event_id, user_id) rejects a
// second registration by the same user with ErrAlreadyRegistered.
func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	defer metrics.RecordDBOperation("insert", "registrations", time.Now())

	if !validID(reg.EventID) {
		return Registration{}, ErrEventNotFound
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{}).
			Where("id = ?", reg.EventID).
			UpdateColumn("participant_count", gorm.Expr("participant_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		if err := tx.Omit(clause.Associations).Create(&reg).Error; err != nil {
			if isUniqueViolation(err, registrationUniqueIndex) {
				return ErrAlreadyRegistered
			}

			return err
		}

		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	return reg, nil
}

// FindByEvent returns the event's registrations in insertion order with the
// registrant's name and email.
func (d *RegistrationDAO) FindByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	defer metrics.RecordDBOperation("select", "registrations", time.Now())

	registrations := make([]Registration, 0)
	if !validID(eventID) {
		return registrations, nil
	}

	result := d.db.WithContext(ctx).
		Preload("User", ownerNameAndEmail).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindByEventAndUser(ctx context.Context, eventID, userID string) (Registration, error) {
	defer metrics.RecordDBOperation("select", "registrations", time.Now())

	if !validID(eventID) || !validID(userID) {
		return Registration{}, ErrRegistrationNotFound
	}

	var reg Registration
	result := d.db.WithContext(ctx).
		Preload("User", ownerNameAndEmail).
		First(&reg, "event_id = ? AND user_id = ?", eventID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	defer metrics.RecordDBOperation("count", "registrations", time.Now())

	var count int64
	if !validID(eventID) {
		return 0, nil
	}

	result := d.db.WithContext(ctx).Model(&Registration{}).Where("event_id = ?", eventID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id string) (Registration, error) {
	defer metrics.RecordDBOperation("select", "registrations", time.Now())

	if !validID(id) {
		return Registration{}, ErrRegistrationNotFound
	}

	var reg Registration
	result := d.db.WithContext(ctx).Preload("User", ownerNameAndEmail).First(&reg, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}
