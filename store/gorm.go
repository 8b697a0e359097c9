package store

import (
	"context"
	"errors"

	"washcenter-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps records in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Center{},
		&models.Booking{},
		&models.BookingStatusEvent{},
		&models.ReminderLog{},
	)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreateCenter(ctx context.Context, c *models.Center) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) GetCenter(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	var c models.Center
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *GormStore) ListCenters(ctx context.Context) ([]models.Center, error) {
	var out []models.Center
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) UpdateCenter(ctx context.Context, id uuid.UUID, apply CenterUpdate) (*models.Center, error) {
	var c models.Center
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := apply(&c); err != nil {
			return err
		}
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) DeleteCenter(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Center{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormStore) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	qb := s.db.WithContext(ctx).Model(&models.Booking{})
	if len(f.Statuses) > 0 {
		qb = qb.Where("status IN ?", f.Statuses)
	}
	if f.CenterID != uuid.Nil {
		qb = qb.Where("center_id = ?", f.CenterID)
	}
	if f.DateFrom != nil {
		qb = qb.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		qb = qb.Where("date < ?", *f.DateTo)
	}
	var out []models.Booking
	if err := qb.Order("date DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBooking locks the row for the duration of apply so concurrent
// transitions of the same booking are serialized by Postgres.
func (s *GormStore) UpdateBooking(ctx context.Context, id uuid.UUID, apply BookingUpdate) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		event, err := apply(&b)
		if err != nil {
			return err
		}
		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if event != nil {
			return tx.Create(event).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) ListStatusEvents(ctx context.Context, bookingID uuid.UUID) ([]models.BookingStatusEvent, error) {
	var out []models.BookingStatusEvent
	if err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateReminderLog(ctx context.Context, r *models.ReminderLog) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) ListReminderLogs(ctx context.Context) ([]models.ReminderLog, error) {
	var out []models.ReminderLog
	if err := s.db.WithContext(ctx).Order("sent_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
