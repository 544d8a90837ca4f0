package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/pkg/metrics"
)

// Recorder is what mutating services need from the audit trail.
type Recorder interface {
	// Record writes the audit row and its outbox message using tx, so they commit or roll back with the caller.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	// LogEvent is best effort: failures are logged and never returned.
	LogEvent(ctx context.Context, entry Entry)
}

type Options struct {
	Topic       string
	ExportLimit int
}

type Page struct {
	Logs   []Audit
	Total  int64
	Limit  int
	Offset int
}

type Service struct {
	db          *gorm.DB
	repo        Repository
	logger      *zap.Logger
	topic       string
	exportLimit int
	now         func() time.Time
}

func NewService(db *gorm.DB, repo Repository, logger *zap.Logger, opts Options) *Service {
	if opts.Topic == "" {
		opts.Topic = "laundry.audit"
	}
	if opts.ExportLimit <= 0 {
		opts.ExportLimit = 10000
	}
	return &Service{
		db:          db,
		repo:        repo,
		logger:      logger,
		topic:       opts.Topic,
		exportLimit: opts.ExportLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	_, err := s.record(ctx, tx, entry)
	return err
}

func (s *Service) record(ctx context.Context, tx *gorm.DB, entry Entry) (uint, error) {
	if entry.TableName == "" || entry.Action == "" {
		return 0, ErrInvalidEntry
	}
	if !IsValidAction(entry.Action) {
		return 0, ErrInvalidAction
	}

	row := entry.toModel(s.now())
	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, &row); err != nil {
		return 0, fmt.Errorf("insert audit row: %w", err)
	}

	payload, err := json.Marshal(eventFrom(row))
	if err != nil {
		return 0, fmt.Errorf("encode audit event: %w", err)
	}
	msg := OutboxMessage{
		AuditID:   row.AuditID,
		Topic:     s.topic,
		Payload:   string(payload),
		CreatedAt: row.OccurredAt,
	}
	if err := repo.CreateOutbox(ctx, &msg); err != nil {
		return 0, fmt.Errorf("insert outbox message: %w", err)
	}

	metrics.AuditRecordsTotal.WithLabelValues(row.Table, string(row.ActionType)).Inc()
	return row.AuditID, nil
}

// Create inserts one audit row in its own transaction and returns its id.
func (s *Service) Create(ctx context.Context, entry Entry) (uint, error) {
	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = s.record(ctx, tx, entry)
		return err
	})
	return id, err
}

func (s *Service) LogEvent(ctx context.Context, entry Entry) {
	if _, err := s.Create(context.WithoutCancel(ctx), entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Error("audit event not recorded",
			zap.Error(err),
			zap.String("table", entry.TableName),
			zap.String("record_id", entry.RecordID),
			zap.String("action", string(entry.Action)),
		)
	}
}

func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	q = q.normalize(MaxLimit)
	logs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return Page{Logs: logs, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *Service) RecordHistory(ctx context.Context, table, recordID string) ([]Audit, error) {
	return s.repo.History(ctx, table, recordID)
}

func (s *Service) UserActivity(ctx context.Context, username string, from, to *time.Time, limit, offset int) (Page, error) {
	return s.List(ctx, Query{
		EmpID:     username,
		From:      from,
		To:        to,
		Limit:     limit,
		Offset:    offset,
		SortBy:    "date",
		SortOrder: "desc",
	})
}

// Cleanup removes audit rows older than retentionDays and records the cleanup itself.
func (s *Service) Cleanup(ctx context.Context, actor Actor, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, ErrInvalidRetention
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)

	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.AuditCleanupDeleted.Add(float64(deleted))

	s.LogEvent(ctx, Entry{
		Actor:     actor,
		TableName: "audit",
		Action:    ActionCleanup,
		Status:    fmt.Sprintf("Deleted %d audit logs older than %d days", deleted, retentionDays),
		NewValues: map[string]any{
			"retention_days": retentionDays,
			"cutoff":         cutoff,
			"deleted":        deleted,
		},
	})
	return deleted, nil
}

// RecordID formats numeric primary keys the way the audit table stores them.
func RecordID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
