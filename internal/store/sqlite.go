package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"gorm.io/gorm"
)

type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// GORM model structs
type DeliveryModel struct {
	ID            string `gorm:"primaryKey"`
	ServerFrameID uint64
	Envelope      []byte
	Timestamp     time.Time
	AckHandle     *string
	Acked         bool
	LastUpdated   time.Time
}

func (DeliveryModel) TableName() string {
	return "deliveries"
}

// NewSQLiteStore creates a new SQLite-backed delivery journal
func NewSQLiteStore(ctx context.Context, dbPath string) (DataAccess, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w (path: %s)", err, dbPath)
	}

	service := &SQLiteStore{db: db, dbPath: dbPath}

	// Auto-migrate the schema
	if err := service.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	zlog := zerolog.Ctx(ctx)
	zlog.Debug().Msgf("sqlite delivery journal initialized: %s", dbPath)
	return service, nil
}

func (s *SQLiteStore) migrate() error {
	return s.db.AutoMigrate(&DeliveryModel{})
}

func (s *SQLiteStore) RecordDelivery(d Delivery) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	} else {
		var count int64
		s.db.Model(&DeliveryModel{}).Where("id = ?", d.ID).Count(&count)
		if count > 0 {
			return "", fmt.Errorf("delivery with ID %s already exists", d.ID)
		}
	}
	d.LastUpdated = time.Now()

	model := s.deliveryToModel(d)
	if err := s.db.Create(&model).Error; err != nil {
		return "", err
	}
	return d.ID, nil
}

func (s *SQLiteStore) GetDelivery(id string) (*Delivery, error) {
	var model DeliveryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("delivery with ID %s not found", id)
		}
		return nil, err
	}

	d := s.modelToDelivery(model)
	return &d, nil
}

func (s *SQLiteStore) RecordAckHandle(id string, handle uint64) error {
	result := s.db.Model(&DeliveryModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"ack_handle":   strconv.FormatUint(handle, 10),
			"last_updated": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) MarkAcked(id string) error {
	result := s.db.Model(&DeliveryModel{}).Where("id = ?", id).
		Updates(map[string]any{"acked": true, "last_updated": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) ListPending() []Delivery {
	var models []DeliveryModel
	s.db.Where("acked = ?", false).Find(&models)

	deliveries := make([]Delivery, len(models))
	for i, m := range models {
		deliveries[i] = s.modelToDelivery(m)
	}
	return deliveries
}

func (s *SQLiteStore) DeleteDelivery(id string) error {
	result := s.db.Delete(&DeliveryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) deliveryToModel(d Delivery) DeliveryModel {
	var ackHandle *string
	if d.AckHandle != nil {
		v := strconv.FormatUint(d.AckHandle.Value, 10)
		ackHandle = &v
	}
	return DeliveryModel{
		ID:            d.ID,
		ServerFrameID: d.ServerFrameID,
		Envelope:      d.Envelope,
		Timestamp:     d.Timestamp,
		AckHandle:     ackHandle,
		Acked:         d.Acked,
		LastUpdated:   d.LastUpdated,
	}
}

func (s *SQLiteStore) modelToDelivery(m DeliveryModel) Delivery {
	var ackHandle *wrapperspb.UInt64Value
	if m.AckHandle != nil {
		if v, err := strconv.ParseUint(*m.AckHandle, 10, 64); err == nil {
			ackHandle = wrapperspb.UInt64(v)
		}
	}
	return Delivery{
		ID:            m.ID,
		ServerFrameID: m.ServerFrameID,
		Envelope:      m.Envelope,
		Timestamp:     m.Timestamp,
		AckHandle:     ackHandle,
		Acked:         m.Acked,
		LastUpdated:   m.LastUpdated,
	}
}
