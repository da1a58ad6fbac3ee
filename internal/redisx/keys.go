package redisx

import "time"

const (
	// Idempotency for sale recording: idem:sale:record:{external_id} -> sale_id
	KeyIdemSaleRecord = "idem:sale:record:%s"

	// Cached product catalog (JSON array): catalog:products
	KeyProductCatalog = "catalog:products"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Daily revenue aggregates: hash revenue:{yyyy-mm-dd}
	KeyDailyRevenue = "revenue:%s"
)

var (
	TTLIdempotency  = 24 * time.Hour
	TTLCatalogCache = 1 * time.Minute
	TTLDedup        = 48 * time.Hour
	TTLRevenue      = 90 * 24 * time.Hour
)
