package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"whatsapp-commerce-billing/internal/usecase"
)

// RateLimiter is the slice of the redis limiter the voucher-check endpoint
// needs. nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	pricing  usecase.PricingUseCase
	vouchers usecase.VoucherUseCase
	checkout usecase.CheckoutUseCase
	payments usecase.PaymentUseCase
	sweep    usecase.SweepUseCase

	limiter     RateLimiter
	limitCount  int
	limitWindow time.Duration

	adminKey string
	cronKey  string
	log      *zerolog.Logger
}

func NewServer(
	pricing usecase.PricingUseCase,
	vouchers usecase.VoucherUseCase,
	checkout usecase.CheckoutUseCase,
	payments usecase.PaymentUseCase,
	sweep usecase.SweepUseCase,
	limiter RateLimiter,
	limitCount int,
	limitWindow time.Duration,
	adminKey, cronKey string,
	logger *zerolog.Logger,
) *Server {
	if limitCount <= 0 {
		limitCount = 10
	}
	if limitWindow <= 0 {
		limitWindow = time.Minute
	}
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		pricing:     pricing,
		vouchers:    vouchers,
		checkout:    checkout,
		payments:    payments,
		sweep:       sweep,
		limiter:     limiter,
		limitCount:  limitCount,
		limitWindow: limitWindow,
		adminKey:    adminKey,
		cronKey:     cronKey,
		log:         &srvLog,
	}
}

// Router assembles the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", s.handleCheckoutCreate)
		r.Post("/vouchers/validate", s.handleVoucherValidate)

		r.Post("/payments/process", s.handlePaymentProcess)
		r.Post("/payments/webhook", s.handlePaymentWebhook)
		r.Get("/payments/{id}", s.handlePaymentGet)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(s.adminKey, s.log))
			r.Get("/transactions/{id}", s.handleTransactionGet)
			r.Post("/transactions/{id}/cancel", s.handleTransactionCancel)
			r.Get("/vouchers", s.handleVoucherList)
			r.Post("/vouchers", s.handleVoucherCreate)
			r.Put("/vouchers/{id}", s.handleVoucherUpdate)
			r.Delete("/vouchers/{id}", s.handleVoucherDeactivate)
		})

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(s.cronKey, s.log))
			r.Post("/jobs/expire", s.handleJobExpire)
			r.Post("/jobs/activation-sweep", s.handleJobSweep)
		})
	})

	return r
}
