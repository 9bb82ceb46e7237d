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

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	Title            string `gorm:"not null"`
	Description      string
	Venue            string
	Rules            string
	Thumbnail        string
	PrizePool        string
	MaxTeams         int       `gorm:"not null;default:0"`
	Status           string    `gorm:"not null;index"`
	StartDate        time.Time `gorm:"not null;index"`
	EndDate          time.Time `gorm:"not null"`
	CreatedBy        string    `gorm:"type:uuid;not null;index"`
	Owner            *User     `gorm:"foreignKey:CreatedBy"`
	ParticipantCount int       `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	return nil
}

// updatableEventColumns excludes created_by and participant_count: ownership is
// fixed at creation and the counter only moves through registrations.
var updatableEventColumns = []string{
	"title", "description", "venue", "rules", "thumbnail", "prize_pool",
	"max_teams", "status", "start_date", "end_date", "updated_at",
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func ownerName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

func ownerNameAndEmail(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	defer metrics.RecordDBOperation("insert", "events", time.Now())

	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

// FindByID loads one event with its owner's name.
func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	defer metrics.RecordDBOperation("select", "events", time.Now())

	if !validID(id) {
		return Event{}, ErrEventNotFound
	}

	var event Event
	result := d.db.WithContext(ctx).Preload("Owner", ownerName).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindByStatuses returns events in any of statuses, earliest start first.
func (d *EventDAO) FindByStatuses(ctx context.Context, statuses []string) ([]Event, error) {
	defer metrics.RecordDBOperation("select", "events", time.Now())

	events := make([]Event, 0)
	result := d.db.WithContext(ctx).
		Preload("Owner", ownerName).
		Where("status IN ?", statuses).
		Order("start_date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// FindAll returns every event, newest first, with owner name and email.
func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	defer metrics.RecordDBOperation("select", "events", time.Now())

	events := make([]Event, 0)
	result := d.db.WithContext(ctx).
		Preload("Owner", ownerNameAndEmail).
		Order("created_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	defer metrics.RecordDBOperation("update", "events", time.Now())

	if !validID(event.ID) {
		return Event{}, ErrEventNotFound
	}

	event.Owner = nil
	event.UpdatedAt = time.Now()
	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Select(updatableEventColumns).
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

// Delete removes the event row only. Registrations pointing at it are kept.
func (d *EventDAO) Delete(ctx context.Context, id string) error {
	defer metrics.RecordDBOperation("delete", "events", time.Now())

	if !validID(id) {
		return ErrEventNotFound
	}

	result := d.db.WithContext(ctx).Delete(&Event{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// RecountParticipants resets participant_count to the number of stored registrations.
func (d *EventDAO) RecountParticipants(ctx context.Context, id string) (Event, error) {
	defer metrics.RecordDBOperation("recount", "events", time.Now())

	if !validID(id) {
		return Event{}, ErrEventNotFound
	}

	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		UpdateColumn("participant_count", gorm.Expr(
			"(SELECT COUNT(*) FROM registrations WHERE registrations.event_id = events.id)",
		))
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, id)
}
