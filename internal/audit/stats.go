package audit

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const topUsersLimit = 10

type HourBucket struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type DayBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Stats struct {
	Total       int64        `json:"total"`
	Today       int64        `json:"today"`
	ThisWeek    int64        `json:"this_week"`
	ThisMonth   int64        `json:"this_month"`
	ByAction    []Bucket     `json:"by_action"`
	ByTable     []Bucket     `json:"by_table"`
	TopUsers    []Bucket     `json:"top_users"`
	Hourly      []HourBucket `json:"hourly"`
	Daily       []DayBucket  `json:"daily"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// window bounds are UTC; weeks start on Monday.
type window struct {
	dayStart   time.Time
	weekStart  time.Time
	weekEnd    time.Time
	monthStart time.Time
}

func windowAt(now time.Time) window {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	return window{
		dayStart:   day,
		weekStart:  week,
		weekEnd:    week.AddDate(0, 0, 7),
		monthStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
}

// Stats runs the aggregate queries concurrently.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	w := windowAt(now)

	var (
		st     = Stats{GeneratedAt: now}
		stamps []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Total, err = s.repo.Count(gctx, nil, nil)
		return err
	})
	g.Go(func() (err error) {
		st.Today, err = s.repo.Count(gctx, &w.dayStart, nil)
		return err
	})
	g.Go(func() (err error) {
		st.ThisWeek, err = s.repo.Count(gctx, &w.weekStart, &w.weekEnd)
		return err
	})
	g.Go(func() (err error) {
		st.ThisMonth, err = s.repo.Count(gctx, &w.monthStart, nil)
		return err
	})
	g.Go(func() (err error) {
		st.ByAction, err = s.repo.GroupBy(gctx, "action_type", 0)
		return err
	})
	g.Go(func() (err error) {
		st.ByTable, err = s.repo.GroupBy(gctx, "table_name", 0)
		return err
	})
	g.Go(func() (err error) {
		st.TopUsers, err = s.repo.GroupBy(gctx, "emp_id", topUsersLimit)
		return err
	})
	g.Go(func() (err error) {
		stamps, err = s.repo.Timestamps(gctx, w.weekStart, w.weekEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st.Hourly, st.Daily = histograms(stamps, w.weekStart)
	return st, nil
}

func histograms(stamps []time.Time, weekStart time.Time) ([]HourBucket, []DayBucket) {
	hourly := make([]HourBucket, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}
	daily := make([]DayBucket, 7)
	for d := range daily {
		daily[d].Date = weekStart.AddDate(0, 0, d).Format("2006-01-02")
	}

	for _, ts := range stamps {
		ts = ts.UTC()
		hourly[ts.Hour()].Count++
		day := int(ts.Sub(weekStart).Hours() / 24)
		if day >= 0 && day < 7 {
			daily[day].Count++
		}
	}
	return hourly, daily
}
