package cashclose

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/pkg/mailer"
	"garaadka-laundry/internal/pkg/trail"
	"garaadka-laundry/internal/pkg/validation"
)

const reportTemplate = `<h2>Daily cash close {{.Date}}</h2>
<table>
<tr><td>Cash</td><td>{{printf "%.2f" .Close.Cash}}</td></tr>
<tr><td>Card</td><td>{{printf "%.2f" .Close.Card}}</td></tr>
<tr><td>Mobile</td><td>{{printf "%.2f" .Close.Mobile}}</td></tr>
<tr><td>Bank transfer</td><td>{{printf "%.2f" .Close.BankTransfer}}</td></tr>
<tr><td><b>Total</b></td><td><b>{{printf "%.2f" .Close.TotalAmount}}</b></td></tr>
<tr><td>Expected</td><td>{{printf "%.2f" .Close.ExpectedTotal}}</td></tr>
<tr><td>Difference</td><td>{{printf "%.2f" .Close.Difference}}</td></tr>
</table>
<p>Closed by {{.Close.CreatedBy}}</p>`

type Service interface {
	Validate(ctx context.Context, in Input, excludeID uint) (ValidationResult, error)
	Summary(ctx context.Context, date string) (Summary, error)
	Create(ctx context.Context, actor audit.Actor, in Input) (CashClose, error)
	Read(ctx context.Context, id uint) (CashClose, error)
	ReadByDate(ctx context.Context, date string) (CashClose, error)
	List(ctx context.Context, f Filter) ([]CashClose, error)
	Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (CashClose, error)
}

type Options struct {
	// ReportTo receives the close report by mail; empty disables it.
	ReportTo string
}

type serviceImpl struct {
	db         *gorm.DB
	Repository Repository
	recorder   audit.Recorder
	mail       mailer.Service
	opts       Options
	logger     *zap.Logger
}

// NewService builds the cash close service. mail may be nil.
func NewService(db *gorm.DB, repository Repository, recorder audit.Recorder, mail mailer.Service, opts Options, logger *zap.Logger) Service {
	return &serviceImpl{
		db:         db,
		Repository: repository,
		recorder:   recorder,
		mail:       mail,
		opts:       opts,
		logger:     logger,
	}
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(validation.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (s *serviceImpl) Validate(ctx context.Context, in Input, excludeID uint) (ValidationResult, error) {
	return validate(ctx, s.Repository, in, excludeID)
}

func validate(ctx context.Context, repo Repository, in Input, excludeID uint) (ValidationResult, error) {
	var problems []Problem
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"cash", in.Cash},
		{"card", in.Card},
		{"mobile", in.Mobile},
		{"bank_transfer", in.BankTransfer},
		{"total_amount", in.TotalAmount},
	} {
		if f.value < 0 {
			problems = append(problems, Problem{Field: f.name, Message: fmt.Sprintf("%s cannot be negative", f.name)})
		}
	}

	sum := order.RoundCents(in.methodSum())
	if math.Abs(sum-in.TotalAmount) > Tolerance+1e-9 {
		problems = append(problems, Problem{
			Field:   "total_amount",
			Message: fmt.Sprintf("Payment method totals (%.2f) do not match total amount (%.2f)", sum, in.TotalAmount),
		})
	}

	duplicate := false
	date, err := ParseDate(in.CloseDate)
	if err != nil {
		problems = append(problems, Problem{Field: "close_date", Message: err.Error()})
	} else {
		exists, err := repo.ExistsForDate(ctx, date, excludeID)
		if err != nil {
			return ValidationResult{}, err
		}
		if exists {
			duplicate = true
			problems = append(problems, Problem{
				Field:   "close_date",
				Message: fmt.Sprintf("Cash has already been closed for %s", date.Format(validation.DateLayout)),
			})
		}
	}

	if len(problems) > 0 {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			msgs = append(msgs, p.Message)
		}
		return ValidationResult{
			Valid:     false,
			Message:   strings.Join(msgs, "; "),
			Errors:    problems,
			Duplicate: duplicate,
		}, nil
	}
	return ValidationResult{Valid: true, Message: "Cash close is valid", Errors: []Problem{}}, nil
}

func (s *serviceImpl) Summary(ctx context.Context, date string) (Summary, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Summary{}, err
	}
	return summarize(ctx, s.Repository, day)
}

func summarize(ctx context.Context, repo Repository, day time.Time) (Summary, error) {
	orders, err := repo.PaymentTotals(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	ledger, err := repo.RegisterTotals(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	closed, err := repo.ExistsForDate(ctx, day, 0)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Date:     day.Format(validation.DateLayout),
		Orders:   orders,
		Register: ledger,
		Expected: orders.plus(ledger),
		Closed:   closed,
	}, nil
}

func (s *serviceImpl) Create(ctx context.Context, actor audit.Actor, in Input) (CashClose, error) {
	var created CashClose
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		res, err := validate(ctx, repo, in, 0)
		if err != nil {
			return err
		}
		if !res.Valid {
			return &InvalidError{Result: res}
		}

		day, _ := ParseDate(in.CloseDate)
		summary, err := summarize(ctx, repo, day)
		if err != nil {
			return err
		}

		created = CashClose{
			CloseDate:     day,
			Cash:          order.RoundCents(in.Cash),
			Card:          order.RoundCents(in.Card),
			Mobile:        order.RoundCents(in.Mobile),
			BankTransfer:  order.RoundCents(in.BankTransfer),
			TotalAmount:   order.RoundCents(in.TotalAmount),
			ExpectedTotal: summary.Expected.Total,
			Notes:         strings.TrimSpace(in.Notes),
		}
		created.Difference = order.RoundCents(created.TotalAmount - created.ExpectedTotal)
		created.StampCreate(actor.EmpID, trail.Now())

		if err := repo.Create(ctx, &created); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(created.CloseID),
			Action:    audit.ActionCreate,
			Status:    fmt.Sprintf("Cash closed for %s with total %.2f", in.CloseDate, created.TotalAmount),
			NewValues: created,
		})
	})
	if err != nil {
		return CashClose{}, err
	}

	s.sendReport(created)
	return created, nil
}

// sendReport mails the close after commit. Failures are logged only.
func (s *serviceImpl) sendReport(c CashClose) {
	if s.mail == nil || s.opts.ReportTo == "" {
		return
	}
	date := c.CloseDate.Format(validation.DateLayout)
	data := map[string]any{"Date": date, "Close": c}
	if err := s.mail.SendTemplate(s.opts.ReportTo, "Daily cash close "+date, reportTemplate, data); err != nil {
		s.logger.Warn("cash close report not sent", zap.String("date", date), zap.Error(err))
	}
}

func (s *serviceImpl) Read(ctx context.Context, id uint) (CashClose, error) {
	return s.Repository.Read(ctx, id)
}

func (s *serviceImpl) ReadByDate(ctx context.Context, date string) (CashClose, error) {
	day, err := ParseDate(date)
	if err != nil {
		return CashClose{}, err
	}
	return s.Repository.ReadByDate(ctx, day)
}

func (s *serviceImpl) List(ctx context.Context, f Filter) ([]CashClose, error) {
	return s.Repository.List(ctx, f)
}

func (s *serviceImpl) Update(ctx context.Context, actor audit.Actor, id uint, in UpdateInput) (CashClose, error) {
	if in == (UpdateInput{}) {
		return CashClose{}, ErrNothingToUpdate
	}

	var updated CashClose
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repository.WithTx(tx)
		old, err := repo.Read(ctx, id)
		if err != nil {
			return err
		}

		merged := mergeInput(old, in)
		res, err := validate(ctx, repo, merged, id)
		if err != nil {
			return err
		}
		if !res.Valid {
			return &InvalidError{Result: res}
		}

		day, _ := ParseDate(merged.CloseDate)
		expected := old.ExpectedTotal
		if !day.Equal(old.CloseDate) {
			summary, err := summarize(ctx, repo, day)
			if err != nil {
				return err
			}
			expected = summary.Expected.Total
		}
		total := order.RoundCents(merged.TotalAmount)
		fields := map[string]any{
			"close_date":     day,
			"cash":           order.RoundCents(merged.Cash),
			"card":           order.RoundCents(merged.Card),
			"mobile":         order.RoundCents(merged.Mobile),
			"bank_transfer":  order.RoundCents(merged.BankTransfer),
			"total_amount":   total,
			"expected_total": expected,
			"difference":     order.RoundCents(total - expected),
			"notes":          strings.TrimSpace(merged.Notes),
		}
		if err := repo.Update(ctx, id, trail.ForUpdate(fields, actor.EmpID)); err != nil {
			return err
		}
		if updated, err = repo.Read(ctx, id); err != nil {
			return err
		}
		return s.recorder.Record(ctx, tx, audit.Entry{
			Actor:     actor,
			TableName: tableName,
			RecordID:  audit.RecordID(id),
			Action:    audit.ActionUpdate,
			Status:    fmt.Sprintf("Cash close for %s updated", merged.CloseDate),
			OldValues: old,
			NewValues: updated,
		})
	})
	if err != nil {
		return CashClose{}, err
	}
	return updated, nil
}

func mergeInput(old CashClose, in UpdateInput) Input {
	merged := Input{
		CloseDate:    old.CloseDate.UTC().Format(validation.DateLayout),
		Cash:         old.Cash,
		Card:         old.Card,
		Mobile:       old.Mobile,
		BankTransfer: old.BankTransfer,
		TotalAmount:  old.TotalAmount,
		Notes:        old.Notes,
	}
	if in.CloseDate != nil {
		merged.CloseDate = *in.CloseDate
	}
	if in.Cash != nil {
		merged.Cash = *in.Cash
	}
	if in.Card != nil {
		merged.Card = *in.Card
	}
	if in.Mobile != nil {
		merged.Mobile = *in.Mobile
	}
	if in.BankTransfer != nil {
		merged.BankTransfer = *in.BankTransfer
	}
	if in.TotalAmount != nil {
		merged.TotalAmount = *in.TotalAmount
	}
	if in.Notes != nil {
		merged.Notes = *in.Notes
	}
	return merged
}

// IsDuplicate reports whether err means the date was already closed.
func IsDuplicate(err error) bool {
	var invalid *InvalidError
	if errors.As(err, &invalid) {
		return invalid.Result.Duplicate
	}
	return errors.Is(err, ErrAlreadyClosed)
}
