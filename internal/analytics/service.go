package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tokokecil/pos-backend/internal/kafka"
	"github.com/tokokecil/pos-backend/internal/pos"
	"github.com/tokokecil/pos-backend/internal/redisx"
)

// Service folds committed sales into daily revenue aggregates in Redis. It is
// wired as the consumer handler for the sale-recorded topic.
type Service struct {
	Redis       *redis.Client
	Logger      *zap.Logger
	ServiceName string
}

func (s *Service) HandleSaleRecorded(ctx context.Context, m kafkago.Message) error {
	var env pos.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != pos.EventSaleRecorded {
		return nil
	} // ignore

	// dedup by event_id so redelivered messages don't double-count revenue
	dkey := fmt.Sprintf(redisx.KeyDedup, "analytics", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[pos.SaleRecordedPayload](env.Payload)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(redisx.KeyDailyRevenue, DayKey(p.Date))
	pipe := s.Redis.TxPipeline()
	pipe.HIncrBy(ctx, key, "total_cents", int64(p.TotalCents))
	pipe.HIncrBy(ctx, key, "sales", 1)
	pipe.HIncrBy(ctx, key, "worker:"+p.WorkerID, int64(p.TotalCents))
	pipe.Expire(ctx, key, redisx.TTLRevenue)
	pipe.Set(ctx, dkey, "1", redisx.TTLDedup)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.Logger.Info("sale aggregated",
		zap.String("sale_id", p.SaleID),
		zap.String("worker_id", p.WorkerID),
		zap.Int("total_cents", p.TotalCents),
	)
	return nil
}

// DayKey buckets a timestamp into its UTC calendar day.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }
