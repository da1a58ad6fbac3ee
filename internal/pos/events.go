package pos

import (
	"encoding/json"
	"time"
)

const (
	EventSaleRecorded = "SaleRecorded"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "pos-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // sale_id
	Payload       json.RawMessage `json:"payload"`
}

type SaleRecordedPayload struct {
	SaleID     string     `json:"sale_id"`
	WorkerID   string     `json:"worker_id"`
	Lines      []SaleLine `json:"items"`
	TotalCents int        `json:"total_cents"`
	Date       time.Time  `json:"date"`
}
