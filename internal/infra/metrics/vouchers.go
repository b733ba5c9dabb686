package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		voucherChecksTotal,
		voucherRedemptionsTotal,
	)
}

var (
	voucherChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_checks_total",
			Help: "Voucher validation attempts by result (valid or the rejection reason).",
		},
		[]string{"result"},
	)

	voucherRedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voucher_redemptions_total",
			Help: "Voucher usages recorded at transaction success.",
		},
	)
)

func IncVoucherCheck(result string) {
	voucherChecksTotal.WithLabelValues(norm(result)).Inc()
}

func IncVoucherRedemption() {
	voucherRedemptionsTotal.Inc()
}
