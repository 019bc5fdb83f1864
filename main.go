package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/checkin"
	"ms-nft-ticketing/internal/checkin/checkin_api"
	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/database/migrations"
	"ms-nft-ticketing/internal/events"
	"ms-nft-ticketing/internal/events/event_api"
	"ms-nft-ticketing/internal/inventory"
	"ms-nft-ticketing/internal/kafka"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/monitoring"
	"ms-nft-ticketing/internal/nft/minting"
	"ms-nft-ticketing/internal/nft/minting/nft_api"
	mintredis "ms-nft-ticketing/internal/nft/minting/redis"
	"ms-nft-ticketing/internal/nft/storage"
	"ms-nft-ticketing/internal/payment"
	"ms-nft-ticketing/internal/sse"
	ticket_db "ms-nft-ticketing/internal/tickets/db"
	"ms-nft-ticketing/internal/tickets/qr"
	tickets "ms-nft-ticketing/internal/tickets/service"
	"ms-nft-ticketing/internal/tickets/ticket_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting NFT Ticketing Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	httpClient := &http.Client{
		Timeout: time.Second * 10,
	}

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	migrateOpts := migrations.DefaultOptions()
	if migrateOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrateOpts)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Schema migration failed: %v", err))
		}
		log.Info("DATABASE", "Schema migrations applied")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.TopicSet{
		TicketPurchased: cfg.Kafka.Topics.TicketPurchased,
		TicketCheckedIn: cfg.Kafka.Topics.TicketCheckedIn,
		EventUpdated:    cfg.Kafka.Topics.EventUpdated,
		NFTMinted:       cfg.Kafka.Topics.NFTMinted,
	}, cfg.Kafka.Enabled)
	defer producer.Close()

	if cfg.Kafka.Enabled {
		log.Info("KAFKA", "Kafka producer initialized successfully")
		requiredTopics := []string{
			cfg.Kafka.Topics.TicketPurchased,
			cfg.Kafka.Topics.TicketCheckedIn,
			cfg.Kafka.Topics.EventUpdated,
			cfg.Kafka.Topics.NFTMinted,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Change feed disabled by config, events will not be published")
	}

	payment.InitStripe(cfg.Stripe.SecretKey)
	stripeService := payment.NewStripeService(cfg.Stripe.Currency, log)

	qrGen := qr.NewQRGenerator(cfg.Auth.QRSecret)
	emitter := sse.NewAttendanceEventEmitter()

	pinner := storage.NewPinner(cfg.NFT.PinServiceURL, httpClient)

	var minter minting.Minter
	if cfg.NFT.MintServiceURL != "" {
		minter = minting.NewHTTPMinter(cfg.NFT.MintServiceURL, httpClient)
		log.Info("NFT", fmt.Sprintf("Using HTTP mint service at %s", cfg.NFT.MintServiceURL))
	} else {
		minter = minting.NewSimulatedMinter()
		log.Warn("NFT", "MINT_SERVICE_URL not set, using simulated minter")
	}

	ledger := inventory.NewLedger(&inventory.DB{Bun: bunDB})
	ticketService := tickets.NewTicketService(&ticket_db.DB{Bun: bunDB}, ledger, producer, qrGen, log)

	mintLock := mintredis.NewMintLock(redisClient, cfg.NFT.LockTTL)
	mintService := minting.NewService(
		&minting.DB{Bun: bunDB},
		mintLock,
		pinner,
		minter,
		&ticket_db.DB{Bun: bunDB},
		producer,
		emitter,
		log,
		cfg.NFT.UploadTimeout,
		cfg.NFT.MintTimeout,
	)

	coordinator := checkin.NewCoordinator(&checkin.DB{Bun: bunDB}, ticketService, producer, mintService, emitter, log)

	eventService := events.NewEventService(&events.DB{Bun: bunDB}, pinner, producer, log)

	monitoring.NewMonitor(redisClient)

	ticketHandler := &ticket_api.Handler{
		TicketService: ticketService,
		Payments:      stripeService,
		Logger:        log,
	}
	checkinHandler := &checkin_api.Handler{
		Coordinator: coordinator,
		QRGenerator: qrGen,
		Emitter:     emitter,
		Logger:      log,
	}
	nftHandler := &nft_api.Handler{
		MintService: mintService,
		Coordinator: coordinator,
		Logger:      log,
	}
	eventHandler := event_api.NewHandler(eventService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Handle("/metrics", promhttp.Handler())
	eventHandler.RegisterPublicRoutes(r)
	log.Info("ROUTER", "Public event catalog registered at /api/events")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		log.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			eventHandler.RegisterRoutes(r)
			log.Info("ROUTER", "Event management routes registered under /api/events")

			r.Route("/tickets", func(r chi.Router) {
				r.Post("/", ticketHandler.PurchaseTicket)
				r.Get("/", ticketHandler.ListMyTickets)
				r.Get("/{ticketID}", ticketHandler.ViewTicket)
				r.Get("/{ticketID}/qr", ticketHandler.TicketQR)
				r.Post("/{ticketID}/transfer", ticketHandler.TransferTicket)
				r.Post("/{ticketID}/cancel", ticketHandler.CancelTicket)
			})
			log.Info("ROUTER", "Ticket routes registered under /api/tickets")

			r.Route("/checkin", func(r chi.Router) {
				r.Post("/", checkinHandler.CheckIn)
			})
			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", checkinHandler.ListMyAttendance)
				r.Get("/stream", checkinHandler.StreamMyAttendance)
				r.Get("/{attendanceID}", nftHandler.GetAttendance)
				r.Post("/{attendanceID}/mint", nftHandler.MintForAttendance)
			})
			r.Post("/nft/reconcile", nftHandler.ReconcileOrphans)
			log.Info("ROUTER", "Check-in and NFT routes registered under /api/checkin and /api/attendance")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 NFT Ticketing Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ NFT Ticketing Service shutdown complete")
	}
}
