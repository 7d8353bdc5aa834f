package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customkeeps/internal/auth"
	"customkeeps/internal/cart"
	"customkeeps/internal/config"
	"customkeeps/internal/coupon"
	"customkeeps/internal/db"
	"customkeeps/internal/logger"
	"customkeeps/internal/middleware"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/payment/webhook"
	"customkeeps/internal/product"
	"customkeeps/internal/rest"
	"customkeeps/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	initDBFunc    = db.InitDB
	initRedisFunc = db.NewRedis

	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.InitWithFile(cfg.AppEnv, cfg.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	rdb, err := initRedisFunc(ctx, cfg)
	if err != nil {
		// Commits fall back to the payment_intent_id unique constraint
		// until Redis comes back.
		logger.L().Warn("redis unavailable at startup", zap.Error(err))
		rdb = db.NewRedisClient(cfg)
	}
	defer rdb.Close()

	handler := newServer(ctx, cfg, database, rdb)
	return startServerFunc(ctx, ":"+cfg.AppPort, handler)
}

// newServer wires repositories, services and the router.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) http.Handler {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	productRepo := product.NewRepository(database)
	userRepo := user.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	couponRepo := coupon.NewRepository(database)
	paymentRepo := payment.NewRepository(database)
	orderRepo := order.NewRepository(database)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)
	coupons := coupon.NewService(couponRepo)

	idem := order.NewRedisIdempotencyStore(rdb, cfg.CommitLockTTL, cfg.IdempotencyTTL)
	paymentSvc := payment.NewService(paymentRepo, gateway, productRepo, coupons, cfg.Currency)
	orderSvc := order.NewService(orderRepo, paymentSvc, gateway, idem)

	h := &rest.Handler{
		Users:    user.NewService(userRepo, issuer),
		Products: product.NewService(productRepo),
		Cart:     cart.NewService(cartRepo, productRepo),
		Coupons:  coupons,
		Payments: paymentSvc,
		Orders:   orderSvc,
		Webhook:  webhook.NewStripeHandler(orderSvc, paymentRepo, cfg.StripeWebhookSecret),
		Health: map[string]rest.HealthCheck{
			"postgres": database.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}

	limiter := middleware.NewLimiter(ctx, cfg.InternalKey)
	return rest.NewRouter(h, issuer, limiter, cfg.CORSOrigin)
}

func startServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("storefront API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
