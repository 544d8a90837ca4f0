package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Bucket struct {
	Key   string `gorm:"column:bucket" json:"key"`
	Count int64  `gorm:"column:total" json:"count"`
}

var groupColumns = map[string]bool{
	"action_type": true,
	"table_name":  true,
	"emp_id":      true,
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *Audit) error
	CreateOutbox(ctx context.Context, msg *OutboxMessage) error
	List(ctx context.Context, q Query) ([]Audit, int64, error)
	Count(ctx context.Context, from, to *time.Time) (int64, error)
	GroupBy(ctx context.Context, column string, limit int) ([]Bucket, error)
	Timestamps(ctx context.Context, from, to time.Time) ([]time.Time, error)
	History(ctx context.Context, table, recordID string) ([]Audit, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error)
	MarkDispatched(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, entry *Audit) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) CreateOutbox(ctx context.Context, msg *OutboxMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// List reads the total and the page inside one transaction so both see the same snapshot.
func (r *repositoryImpl) List(ctx context.Context, q Query) ([]Audit, int64, error) {
	var (
		rows  []Audit
		total int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := q.apply(tx.Model(&Audit{})).Count(&total).Error; err != nil {
			return err
		}
		return q.apply(tx.Model(&Audit{})).
			Order(q.orderClause()).
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&Audit{})
	if from != nil {
		query = query.Where("occurred_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("occurred_at < ?", to.UTC())
	}
	err := query.Count(&total).Error
	return total, err
}

func (r *repositoryImpl) GroupBy(ctx context.Context, column string, limit int) ([]Bucket, error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("cannot group audit by %q", column)
	}
	var buckets []Bucket
	query := r.db.WithContext(ctx).
		Model(&Audit{}).
		Select(column + " AS bucket, COUNT(*) AS total").
		Group(column).
		Order("total DESC, bucket ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&buckets).Error
	return buckets, err
}

func (r *repositoryImpl) Timestamps(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&Audit{}).
		Where("occurred_at >= ? AND occurred_at < ?", from.UTC(), to.UTC()).
		Pluck("occurred_at", &stamps).Error
	return stamps, err
}

func (r *repositoryImpl) History(ctx context.Context, table, recordID string) ([]Audit, error) {
	var rows []Audit
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", table, recordID).
		Order("occurred_at ASC, audit_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dispatched_at IS NOT NULL AND created_at < ?", cutoff).
			Delete(&OutboxMessage{}).Error; err != nil {
			return err
		}
		result := tx.Where("occurred_at < ?", cutoff).Delete(&Audit{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *repositoryImpl) PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error) {
	var msgs []OutboxMessage
	err := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *repositoryImpl) MarkDispatched(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{"dispatched_at": at, "last_error": ""}).Error
}

func (r *repositoryImpl) MarkFailed(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).
		Model(&OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}
