package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	SessionTTL    time.Duration
	WorkflowTTL   time.Duration
	SubmitLockTTL time.Duration

	GeoProvider      string
	ORSAPIKey        string
	ORSBaseURL       string
	GoogleMapsAPIKey string
	GeoCacheTTL      time.Duration
	GeoTimeout       time.Duration

	FareBase              float64
	FareRatePerKm         float64
	FareServiceFeePercent float64

	ReceiptLogoPath    string
	CORSAllowedOrigins []string
}

func defaultEnv() Env {
	return Env{
		AppAddr:               ":5000",
		DBUser:                "root",
		DBHost:                "127.0.0.1:3306",
		DBName:                "vehiclerental",
		RedisAddr:             "127.0.0.1:6379",
		SessionTTL:            24 * time.Hour,
		WorkflowTTL:           2 * time.Hour,
		SubmitLockTTL:         30 * time.Second,
		GeoProvider:           "ors",
		ORSBaseURL:            "https://api.openrouteservice.org",
		GeoCacheTTL:           6 * time.Hour,
		GeoTimeout:            8 * time.Second,
		FareBase:              100,
		FareRatePerKm:         15,
		FareServiceFeePercent: 5,
		CORSAllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// LoadEnv reads configuration from the process environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	env := defaultEnv()
	var errs []error

	setString(&env.AppAddr, "APP_ADDR")
	env.GinMode = strings.TrimSpace(os.Getenv("GIN_MODE"))

	setString(&env.DBUser, "DB_USER")
	env.DBPassword = os.Getenv("DB_PASSWORD")
	setString(&env.DBHost, "DB_HOST")
	setString(&env.DBName, "DB_NAME")

	setString(&env.RedisAddr, "REDIS_ADDR")
	env.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setInt(&env.RedisDB, "REDIS_DB", &errs)

	env.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	setDuration(&env.SessionTTL, "SESSION_TTL", &errs)
	setDuration(&env.WorkflowTTL, "WORKFLOW_TTL", &errs)
	setDuration(&env.SubmitLockTTL, "SUBMIT_LOCK_TTL", &errs)

	if v := strings.TrimSpace(os.Getenv("GEO_PROVIDER")); v != "" {
		env.GeoProvider = strings.ToLower(v)
	}
	env.ORSAPIKey = strings.TrimSpace(os.Getenv("ORS_API_KEY"))
	setString(&env.ORSBaseURL, "ORS_BASE_URL")
	env.GoogleMapsAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	setDuration(&env.GeoCacheTTL, "GEO_CACHE_TTL", &errs)
	setDuration(&env.GeoTimeout, "GEO_TIMEOUT", &errs)

	setFloat(&env.FareBase, "FARE_BASE", &errs)
	setFloat(&env.FareRatePerKm, "FARE_RATE_PER_KM", &errs)
	setFloat(&env.FareServiceFeePercent, "FARE_SERVICE_FEE_PERCENT", &errs)

	env.ReceiptLogoPath = strings.TrimSpace(os.Getenv("RECEIPT_LOGO_PATH"))

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSAllowedOrigins = splitAndTrim(v)
	}

	if env.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch env.GeoProvider {
	case "ors", "cities":
		if env.ORSAPIKey == "" {
			errs = append(errs, fmt.Errorf("ORS_API_KEY is required for GEO_PROVIDER=%s", env.GeoProvider))
		}
	case "google":
		if env.GoogleMapsAPIKey == "" {
			errs = append(errs, errors.New("GOOGLE_MAPS_API_KEY is required for GEO_PROVIDER=google"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GEO_PROVIDER %q", env.GeoProvider))
	}
	if env.FareBase < 0 || env.FareRatePerKm < 0 || env.FareServiceFeePercent < 0 {
		errs = append(errs, errors.New("fare settings must not be negative"))
	}

	return env, errors.Join(errs...)
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func setInt(target *int, key string, errs *[]error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = n
	}
}

func setFloat(target *float64, key string, errs *[]error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
