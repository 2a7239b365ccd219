package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// leadRow is the relational shape of a lead. Answers are kept as a JSON document.
type leadRow struct {
	ID         string     `gorm:"primaryKey;size:36"`
	SessionID  string     `gorm:"size:36;uniqueIndex"`
	Fields     []byte     `gorm:"type:jsonb;not null"`
	Phone      string     `gorm:"size:32"`
	PhoneE164  string     `gorm:"size:16;index"`
	Verified   bool       `gorm:"not null;default:false"`
	VerifiedAt *time.Time `gorm:"default:null"`
	CreatedAt  time.Time  `gorm:"index:,sort:desc"`
}

func (leadRow) TableName() string { return "leads" }

func toLeadRow(l *models.Lead) (*leadRow, error) {
	fields, err := json.Marshal(l.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lead fields: %w", err)
	}
	return &leadRow{
		ID:         l.ID,
		SessionID:  l.SessionID,
		Fields:     fields,
		Phone:      l.Phone,
		PhoneE164:  l.PhoneE164,
		Verified:   l.Verified,
		VerifiedAt: l.VerifiedAt,
		CreatedAt:  l.CreatedAt,
	}, nil
}

func (r *leadRow) toLead() (*models.Lead, error) {
	lead := &models.Lead{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Phone:      r.Phone,
		PhoneE164:  r.PhoneE164,
		Verified:   r.Verified,
		VerifiedAt: r.VerifiedAt,
		CreatedAt:  r.CreatedAt,
	}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &lead.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode lead fields: %w", err)
		}
	}
	return lead, nil
}

// PostgresLeadStore keeps leads in PostgreSQL through GORM.
type PostgresLeadStore struct {
	db     *gorm.DB
	logger *logging.SafeLogger
}

// OpenPostgres connects to dsn with GORM's query logging silenced.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

func NewPostgresLeadStore(db *gorm.DB, logger *logging.SafeLogger) *PostgresLeadStore {
	if logger == nil {
		logger = logging.Logger
	}
	return &PostgresLeadStore{db: db, logger: logger.Named("lead_store")}
}

// Migrate creates or updates the leads table.
func (s *PostgresLeadStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&leadRow{}); err != nil {
		return fmt.Errorf("failed to migrate leads table: %w", err)
	}
	return nil
}

func (s *PostgresLeadStore) Save(ctx context.Context, lead *models.Lead) error {
	row, err := toLeadRow(lead)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	observability.DatabaseOperations.WithLabelValues("leads_save", observability.StatusLabel(err)).Inc()
	if err != nil {
		s.logger.Error("failed to save lead", zap.String("lead_id", lead.ID), zap.Error(err))
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (s *PostgresLeadStore) Get(ctx context.Context, id string) (*models.Lead, error) {
	var row leadRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("lead", id)
	}
	observability.DatabaseOperations.WithLabelValues("leads_get", observability.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return row.toLead()
}

func (s *PostgresLeadStore) List(ctx context.Context, limit int) ([]models.Lead, error) {
	var rows []leadRow
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id").
		Limit(clampLimit(limit)).
		Find(&rows).Error
	observability.DatabaseOperations.WithLabelValues("leads_list", observability.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	out := make([]models.Lead, 0, len(rows))
	for i := range rows {
		lead, err := rows[i].toLead()
		if err != nil {
			return nil, err
		}
		out = append(out, *lead)
	}
	return out, nil
}
