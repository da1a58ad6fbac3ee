package pos

const (
	TopicSaleRecorded = "pos.sale.recorded"
)

// Partition key = sale_id so all events for one sale keep their order.
func PartitionKey(saleID string) []byte { return []byte(saleID) }
