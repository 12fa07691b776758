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

	"github.com/gin-gonic/gin"

	intconfig "easyrent/internal/config"
	intdb "easyrent/internal/db"
	"easyrent/internal/domain"
	"easyrent/internal/geo"
	router "easyrent/internal/http"
	"easyrent/internal/http/handlers"
	"easyrent/internal/repositories"
	"easyrent/internal/services"
	"easyrent/internal/workflow"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx := context.Background()

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	rdb, err := intconfig.ConnectRedis(ctx, env)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	provider, err := geoProvider(env)
	if err != nil {
		log.Fatalf("geo: %v", err)
	}
	adapter := geo.NewAdapter(geo.NewDistanceCache(provider, rdb, env.GeoCacheTTL))

	vehicleRepo := repositories.VehicleRepository{DB: db}
	bookingSvc := services.BookingService{
		BookingRepo:  repositories.BookingRepository{DB: db},
		VehicleRepo:  vehicleRepo,
		FeedbackRepo: repositories.FeedbackRepository{DB: db},
	}
	authSvc := services.AuthService{
		Users:   repositories.UserRepository{DB: db},
		Secret:  []byte(env.JWTSecret),
		TTL:     env.SessionTTL,
		Revoker: services.RedisRevoker{Client: rdb},
	}
	fare := domain.FareOptions{
		BaseFare:          env.FareBase,
		RatePerKm:         env.FareRatePerKm,
		ServiceFeePercent: env.FareServiceFeePercent,
	}
	engine := workflow.NewEngine(adapter, fare, vehicleRepo, bookingSvc,
		workflow.NewRedisStore(rdb, env.WorkflowTTL, env.SubmitLockTTL))

	hd := &handlers.Handler{
		Auth:     authSvc,
		Bookings: bookingSvc,
		Payments: services.PaymentService{
			Bookings:    bookingSvc,
			PaymentRepo: repositories.PaymentRepository{DB: db},
		},
		Receipts:     services.ReceiptService{Bookings: bookingSvc, LogoPath: env.ReceiptLogoPath},
		Vehicles:     vehicleRepo,
		Geo:          adapter,
		Flow:         engine,
		SecureCookie: env.GinMode == gin.ReleaseMode,
	}

	r := router.NewRouter(env, hd, authSvc, rdb)
	handlers.SetRouter(r)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s (geo=%s)", env.AppAddr, env.GeoProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped.")
}

// geoProvider picks the geocoding backend named by GEO_PROVIDER. The city
// table still routes through OpenRouteService for driving distances.
func geoProvider(env intconfig.Env) (geo.Provider, error) {
	switch env.GeoProvider {
	case "ors":
		return geo.NewORSClient(env.ORSBaseURL, env.ORSAPIKey, env.GeoTimeout), nil
	case "google":
		g, err := geo.NewGoogleProvider(env.GoogleMapsAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "cities":
		ors := geo.NewORSClient(env.ORSBaseURL, env.ORSAPIKey, env.GeoTimeout)
		return geo.NewCityTable(geo.DefaultCities, ors), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", env.GeoProvider)
	}
}
