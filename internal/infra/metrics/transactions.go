package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		transactionsCreatedTotal,
		transactionsExpiredTotal,
	)
}

var (
	transactionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_created_total",
			Help: "Checkout transactions created, labeled by type.",
		},
		[]string{"type"}, // 'product', 'whatsapp_service', 'mixed_checkout'
	)

	transactionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_expired_total",
			Help: "Total number of transactions moved to expired by the expiry worker.",
		},
	)
)

func IncTransactionCreated(txType string) {
	transactionsCreatedTotal.WithLabelValues(norm(txType)).Inc()
}

func IncTransactionsExpired(count int) {
	transactionsExpiredTotal.Add(float64(count))
}
