package postgres

import (
	"time"

	"github.com/wiratama/access-management/internal/audit"
	"gorm.io/gorm"
)

type auditRow struct {
	ID            int64     `gorm:"primaryKey"`
	TraceID       string    `gorm:"column:trace_id;index"`
	Kind          string    `gorm:"column:kind;not null"`
	UserID        int64     `gorm:"column:user_id"`
	RequestMethod string    `gorm:"column:request_method"`
	RequestURI    string    `gorm:"column:request_uri"`
	ErrorCode     string    `gorm:"column:error_code"`
	Message       string    `gorm:"column:message"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (auditRow) TableName() string { return "audit_logs" }

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(record *audit.Record) error {
	row := auditRow{
		TraceID:       record.TraceID,
		Kind:          record.Kind,
		UserID:        record.UserID,
		RequestMethod: record.RequestMethod,
		RequestURI:    record.RequestURI,
		ErrorCode:     record.ErrorCode,
		Message:       record.Message,
		CreatedAt:     record.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := s.db.Create(&row).Error; err != nil {
		return err
	}
	record.ID = row.ID
	return nil
}

func (s *Store) Recent(limit int) ([]*audit.Record, error) {
	var rows []auditRow
	err := s.db.Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*audit.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &audit.Record{
			ID:            row.ID,
			TraceID:       row.TraceID,
			Kind:          row.Kind,
			UserID:        row.UserID,
			RequestMethod: row.RequestMethod,
			RequestURI:    row.RequestURI,
			ErrorCode:     row.ErrorCode,
			Message:       row.Message,
			CreatedAt:     row.CreatedAt,
		})
	}
	return records, nil
}
