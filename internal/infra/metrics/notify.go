package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(messageDeliveriesTotal) }

var messageDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "message_deliveries_total",
		Help: "Outbound customer notifications by kind and delivery status.",
	},
	[]string{"kind", "status"}, // status: 'sent', 'retried', 'dropped'
)

func IncMessageDelivery(kind, status string) {
	messageDeliveriesTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}
