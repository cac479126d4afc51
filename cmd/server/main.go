package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenmarket/storefront/internal/audit"
	"github.com/lumenmarket/storefront/internal/cart"
	"github.com/lumenmarket/storefront/internal/catalog"
	"github.com/lumenmarket/storefront/internal/config"
	"github.com/lumenmarket/storefront/internal/copywriter"
	"github.com/lumenmarket/storefront/internal/coupon"
	httpdelivery "github.com/lumenmarket/storefront/internal/delivery/http"
	"github.com/lumenmarket/storefront/internal/messaging"
	"github.com/lumenmarket/storefront/internal/messaging/kafka"
	"github.com/lumenmarket/storefront/internal/order"
	"github.com/lumenmarket/storefront/internal/pricing"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/repository/memory"
	"github.com/lumenmarket/storefront/internal/repository/postgres"
	redisrepo "github.com/lumenmarket/storefront/internal/repository/redis"
	"github.com/lumenmarket/storefront/internal/seed"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		products  repository.ProductRepository
		orders    repository.OrderRepository
		coupons   repository.CouponRepository
		customers repository.CustomerRepository
		carts     repository.CartRepository
		trail     repository.AuditRepository
	)

	if cfg.StatePath != "" {
		// Local variant: file-backed snapshots, bounded audit ring.
		store, err := memory.Open(cfg.StatePath)
		if err != nil {
			slog.Error("Failed to open state store", "path", cfg.StatePath, "err", err)
			os.Exit(1)
		}
		products = store.Products()
		orders = store.Orders()
		coupons = store.Coupons()
		customers = store.Customers()
		carts = store.Carts()
		trail = audit.NewRing(cfg.AuditRingSize)
		slog.Info("Using file-backed store", "path", cfg.StatePath)
	} else {
		db, err := postgres.InitDB(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to init database", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()

		products = postgres.NewProductRepository(db)
		orders = postgres.NewOrderRepository(db)
		coupons = postgres.NewCouponRepository(db)
		customers = postgres.NewCustomerRepository(db)
		carts = redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
		trail = postgres.NewAuditRepository(db)
	}

	if err := seed.Apply(ctx, products, coupons); err != nil {
		slog.Error("Failed to seed store", "err", err)
		os.Exit(1)
	}

	var publisher messaging.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = messaging.NewWatermillPublisher(cfg.KafkaBrokers, slog.Default())
		if err != nil {
			// Keep events flowing through the plain writer rather than
			// dropping them.
			slog.Error("Failed to create watermill publisher, falling back to direct kafka writes", "err", err)
			publisher = kafka.NewBroker(cfg.KafkaBrokers)
		}
	}

	catalogSvc := catalog.NewService(products, carts, customers, trail)
	orderEngine := order.NewEngine(orders, customers, coupons, trail, publisher)
	couponLedger := coupon.NewLedger(coupons)
	cartSvc := cart.NewService(carts, products)
	pricer := pricing.NewCalculator(cfg.TaxRate)
	copyClient := copywriter.NewClient(copywriter.NewTemplateProvider(), cfg.CopyCacheTTL, cfg.CopyCooldown)
	defer copyClient.Close()

	handler := httpdelivery.NewHandler(catalogSvc, orderEngine, couponLedger, cartSvc, pricer, copyClient, trail)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpdelivery.EnableCORS(mux),
	}

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")
	httpServer.Shutdown(context.Background())
}
