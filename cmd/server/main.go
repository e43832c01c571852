package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/batcstore/batc-storefront/internal/cart"
	"github.com/batcstore/batc-storefront/internal/catalog"
	catalogrepo "github.com/batcstore/batc-storefront/internal/catalog/repository"
	"github.com/batcstore/batc-storefront/internal/checkout"
	"github.com/batcstore/batc-storefront/internal/events"
	"github.com/batcstore/batc-storefront/internal/forms"
	h "github.com/batcstore/batc-storefront/internal/http"
	"github.com/batcstore/batc-storefront/internal/shopify"
	"github.com/batcstore/batc-storefront/internal/snapshot"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	DBPath          string
	MigrationsPath  string
	ProductsFeedURL string
	StorefrontHost  string
	FormsEndpoint   string
	MongoURI        string
	MongoDBName     string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		DBPath:          getEnv("DB_PATH", "./catalog.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		ProductsFeedURL: getEnv("SHOPIFY_PRODUCTS_URL", "http://localhost:3001/api/shopify/products"),
		StorefrontHost:  getEnv("SHOPIFY_DOMAIN", ""),
		FormsEndpoint:   getEnv("FORMS_ENDPOINT", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		KafkaBrokers:    brokers,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "batc-storefront")
	slog.SetDefault(logger)

	cfg := loadConfig()
	ctx := context.Background()

	// Static catalog (SQLite, seeded by migrations)
	repo, err := catalogrepo.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("catalog migrations completed")

	// Cart snapshots (Redis)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	log.Printf("connected to redis at %s", cfg.RedisAddr)

	// Form journal (Mongo) is optional; the relay works without it.
	var journal forms.Journal
	if cfg.MongoURI != "" {
		mongoDB, err := forms.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		journal = forms.NewMongoJournal(mongoDB)
		log.Printf("form journal enabled at %s", cfg.MongoURI)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	snapshots := snapshot.NewRedisStore(redisClient)
	cartService := cart.NewService(snapshots, func(sessionID string, e cart.Event) {
		if e.Kind == cart.EventItemAdded {
			publisher.ItemAdded(context.Background(), sessionID, e.Product.ID, e.Quantity)
		}
	})

	catalogService := catalog.NewService(repo, shopify.NewClient(cfg.ProductsFeedURL))
	relay := forms.NewRelay(cfg.FormsEndpoint, journal)

	cartHandler := h.NewCartHandler(cartService, catalogService, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(catalogService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(
		cartService,
		checkout.URLBuilder{Domain: cfg.StorefrontHost},
		publisher,
		cfg.RequestTimeout,
	)
	formsHandler := h.NewFormsHandler(relay, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.ListProducts)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.CreateCheckout)
		r.Post("/forms", formsHandler.SubmitForm)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "batc-storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
