package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fruitbox-be/internal/admin"
	"fruitbox-be/internal/auth"
	"fruitbox-be/internal/config"
	"fruitbox-be/internal/db"
	"fruitbox-be/internal/events"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/metrics"
	"fruitbox-be/internal/middleware"
	"fruitbox-be/internal/order"
	"fruitbox-be/internal/payment"
	"fruitbox-be/internal/payment/handler"
	"fruitbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// routes holds what setupRouter mounts. admin is nil when the order store
// is not configured.
type routes struct {
	payment *handler.Handler
	admin   http.Handler
	limiter *middleware.RateLimiter
}

func main() {
	hashMode := flag.Bool("hash-password", false, "read a password from stdin, print its bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashMode {
		if err := hashPassword(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := payment.NewRazorpayGateway(cfg.Razorpay)

	publisher := events.NewPublisher(cfg.Kafka, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing event publisher", zap.Error(err))
		}
	}()

	limiter := middleware.NewRateLimiter()
	go limiter.Cleanup(ctx)

	var (
		recorder    payment.Recorder
		adminRoutes http.Handler
		database    *sql.DB
	)
	if cfg.Database.Enabled() {
		var err error
		database, err = db.NewDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to open order store", zap.Error(err))
		}
		defer database.Close()
		log.Info("Database connection established")

		orderSvc := order.NewService(order.NewRepository(database), publisher)
		recorder = orderSvc

		sweeper := order.NewSweeper(orderSvc, gateway, cfg.OrderTTL, cfg.SweepInterval)
		go sweeper.Run(ctx)

		authenticator := auth.NewAuthenticator(cfg.Admin)
		if !authenticator.Configured() {
			log.Warn("Admin login is not configured; dashboard endpoints will reject every request")
		}
		adminRoutes = admin.NewHandler(orderSvc, authenticator).Routes(limiter)
	} else {
		log.Warn("DB_HOST/DB_NAME not set; orders will not be recorded and the admin dashboard is disabled")
	}

	paymentSvc := payment.NewService(&cfg.Razorpay, gateway, recorder)

	router := setupRouter(routes{
		payment: handler.NewHandler(paymentSvc),
		admin:   adminRoutes,
		limiter: limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Leaves room for a slow gateway call.
		WriteTimeout: cfg.Razorpay.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("Payment server running", zap.String("address", server.Addr), zap.Bool("order_store", database != nil))

	<-ctx.Done()

	log.Info("Shutting down payment server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Payment server stopped")
}

// hashPassword reads the first line of in and writes its bcrypt hash to out.
func hashPassword(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	var password string
	if scanner.Scan() {
		password = strings.TrimRight(scanner.Text(), "\r")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func setupRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	r.With(rt.limiter.Middleware).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rt.limiter.Middleware)
		r.Post("/create-order", rt.payment.CreateOrder)
		r.Post("/verify-payment", rt.payment.VerifyPayment)
	})

	if rt.admin != nil {
		r.Mount("/admin", rt.admin)
	}

	return r
}
