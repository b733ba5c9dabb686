// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/config"
	"whatsapp-commerce-billing/internal/domain/ports/adapter"
	payAdapters "whatsapp-commerce-billing/internal/infra/adapters/payment"
	pg "whatsapp-commerce-billing/internal/infra/db/postgres"
	"whatsapp-commerce-billing/internal/infra/logging"
	"whatsapp-commerce-billing/internal/infra/metrics"
	"whatsapp-commerce-billing/internal/infra/notify"
	red "whatsapp-commerce-billing/internal/infra/redis"
	"whatsapp-commerce-billing/internal/infra/sched"
	"whatsapp-commerce-billing/internal/infra/web"
	"whatsapp-commerce-billing/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	catalogRepo := pg.NewCatalogRepoCacheDecorator(pg.NewCatalogRepo(pool), redisClient)
	voucherRepo := pg.NewVoucherRepo(pool)
	txRepo := pg.NewTransactionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	entRepo := pg.NewEntitlementRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Billing parameters ----
	usdRate, err := decimal.NewFromString(cfg.Billing.USDRate)
	if err != nil {
		log.Fatalf("billing.usd_rate: %v", err)
	}
	feeIDR, err := decimal.NewFromString(cfg.Billing.ServiceFeeIDR)
	if err != nil {
		log.Fatalf("billing.service_fee_idr: %v", err)
	}
	feeUSD, err := decimal.NewFromString(cfg.Billing.ServiceFeeUSD)
	if err != nil {
		log.Fatalf("billing.service_fee_usd: %v", err)
	}

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	var simulated *payAdapters.SimulatedGateway
	switch cfg.Payment.Gateway {
	case "noop":
		gateway = payAdapters.NewNoopPaymentGateway()
	default:
		simulated = payAdapters.NewSimulatedGateway(cfg.Payment.SimulatedDelay)
		gateway = simulated
	}
	logger.Info().Str("gateway", gateway.Name()).Msg("payment gateway ready")

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(catalogRepo, usdRate, logger)
	voucherUC := usecase.NewVoucherUseCase(voucherRepo, logger)
	checkoutUC := usecase.NewCheckoutUseCase(pricingUC, voucherUC, txRepo, payRepo, txm, cfg.Billing.ExpiryHorizon, logger)
	activationUC := usecase.NewActivationUseCase(txRepo, entRepo, voucherRepo, txm, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, txRepo, activationUC, gateway, txm, feeIDR, feeUSD, logger)
	sweepUC := usecase.NewSweepUseCase(txRepo, activationUC, locker, cfg.Scheduler.SweepBatch, logger)

	// ---- Notifications ----
	sender := notify.NewWhatsAppSender(&cfg.Notify)
	dispatcher := notify.NewDispatcher(sender, cfg.Notify.Workers, cfg.Notify.Retries, logger)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// The simulated gateway settles asynchronously: its confirm callback
	// re-enters through the same UpdateStatus path the webhook uses.
	if simulated != nil {
		simulated.SetConfirmFunc(func(cbCtx context.Context, paymentID string) {
			p, err := paymentUC.UpdateStatus(cbCtx, paymentID, "paid", "simulated gateway settle", "gateway")
			if err != nil {
				logger.Error().Err(err).Str("payment_id", paymentID).Msg("simulated settle failed")
				return
			}
			if tx, err := checkoutUC.Get(cbCtx, p.TransactionID); err == nil {
				_ = dispatcher.Submit(notify.Message{
					To:   tx.UserID,
					Text: "Your payment has been received and your order is active.",
					Kind: "payment",
				})
			}
		})
	}

	// ---- HTTP server ----
	srv := web.NewServer(
		pricingUC, voucherUC, checkoutUC, paymentUC, sweepUC,
		rateLimiter, cfg.Billing.VoucherCheckLimit, cfg.Billing.VoucherCheckWindow,
		cfg.Server.AdminAPIKey, cfg.Server.CronAPIKey,
		logger,
	)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Background workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, checkoutUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()

	sweepWorker := sched.NewSweepWorker(cfg.Scheduler.SweepInterval, sweepUC, logger)
	go func() { _ = sweepWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	if simulated != nil {
		simulated.Close()
	}
	cancel()
}
