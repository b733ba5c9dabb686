package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentAmountMismatchTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/paid/failed/cancelled/expired).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of paid payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	paymentAmountMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_amount_mismatch_total",
			Help: "Payment attempts rejected because the amount differed from the transaction.",
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount float64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(amount)
}

func IncPaymentAmountMismatch() {
	paymentAmountMismatchTotal.Inc()
}
