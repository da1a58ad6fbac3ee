package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tokokecil/pos-backend/internal/redisx"
)

type DaySummary struct {
	Day        string         `json:"day"`
	TotalCents int            `json:"total_cents"`
	Sales      int            `json:"sales"`
	ByWorker   map[string]int `json:"by_worker,omitempty"`
}

// Summary returns the last N days of revenue aggregates, today first. Days
// with no recorded sales come back zeroed.
func (s *Service) Summary(ctx context.Context, days int) ([]DaySummary, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	now := time.Now().UTC()
	out := make([]DaySummary, 0, days)
	for i := 0; i < days; i++ {
		day := DayKey(now.AddDate(0, 0, -i))
		vals, err := s.Redis.HGetAll(ctx, fmt.Sprintf(redisx.KeyDailyRevenue, day)).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, parseDaySummary(day, vals))
	}
	return out, nil
}

func parseDaySummary(day string, vals map[string]string) DaySummary {
	ds := DaySummary{Day: day}
	for k, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch {
		case k == "total_cents":
			ds.TotalCents = n
		case k == "sales":
			ds.Sales = n
		case strings.HasPrefix(k, "worker:"):
			if ds.ByWorker == nil {
				ds.ByWorker = map[string]int{}
			}
			ds.ByWorker[strings.TrimPrefix(k, "worker:")] = n
		}
	}
	return ds
}
