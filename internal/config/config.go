package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"

	SessionStoreMongo  = "mongo"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	ImagesMinio = "minio"
	ImagesDisk  = "disk"
)

type (
	Properties struct {
		Env      string `env:"APP_ENV" envDefault:"development"`
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		HTTP     HTTPProperties     `envPrefix:"HTTP_"`
		Mongo    MongoProperties    `envPrefix:"MONGO_"`
		Session  SessionProperties  `envPrefix:"SESSION_"`
		Redis    RedisProperties    `envPrefix:"REDIS_"`
		Images   ImageProperties    `envPrefix:"IMAGES_"`
		S3       S3Properties       `envPrefix:"S3_"`
		Mapbox   MapboxProperties   `envPrefix:"MAPBOX_"`
		Security SecurityProperties `envPrefix:"SECURITY_"`
		GraphQL  GraphQLProperties  `envPrefix:"GRAPHQL_"`
	}

	HTTPProperties struct {
		Addr              string        `env:"ADDR" envDefault:":3000"`
		TLSCertFile       string        `env:"TLS_CERT_FILE"`
		TLSKeyFile        string        `env:"TLS_KEY_FILE"`
		ShutdownGrace     time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"2s"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		BodyLimit         int64         `env:"BODY_LIMIT" envDefault:"20971520"`
	}

	MongoProperties struct {
		URI       string        `env:"URI" envDefault:"mongodb://localhost:27017"`
		Database  string        `env:"DATABASE" envDefault:"yelp-camp"`
		OpTimeout time.Duration `env:"OP_TIMEOUT" envDefault:"5s"`
	}

	SessionProperties struct {
		Secret     string        `env:"SECRET"`
		Store      string        `env:"STORE" envDefault:"mongo"`
		TTL        time.Duration `env:"TTL" envDefault:"168h"`
		CookieName string        `env:"COOKIE_NAME" envDefault:"session"`
	}

	RedisProperties struct {
		Addr     string `env:"ADDR" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	}

	ImageProperties struct {
		Backend  string `env:"BACKEND" envDefault:"disk"`
		Folder   string `env:"FOLDER" envDefault:"YelpCamp"`
		Dir      string `env:"DIR" envDefault:"./uploads"`
		MaxSize  int64  `env:"MAX_SIZE" envDefault:"5242880"`
		MaxFiles int    `env:"MAX_FILES" envDefault:"10"`
	}

	S3Properties struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"yelpcamp"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
		PublicURL string `env:"PUBLIC_URL"`
	}

	MapboxProperties struct {
		Token   string `env:"TOKEN"`
		BaseURL string `env:"BASE_URL" envDefault:"https://api.mapbox.com"`
	}

	SecurityProperties struct {
		CSRF              bool          `env:"CSRF" envDefault:"true"`
		CorazaDirectives  string        `env:"CORAZA_DIRECTIVES"`
		LoginRateInterval time.Duration `env:"LOGIN_RATE_INTERVAL" envDefault:"6s"`
		LoginRateBurst    int           `env:"LOGIN_RATE_BURST" envDefault:"10"`
		AuditLog          string        `env:"AUDIT_LOG"`
	}

	GraphQLProperties struct {
		Enabled            bool `env:"ENABLED" envDefault:"true"`
		AllowIntrospection bool `env:"INTROSPECTION" envDefault:"false"`
	}
)

// Load reads .env outside production, then parses the environment.
func Load() (*Properties, error) {
	if !strings.EqualFold(os.Getenv("APP_ENV"), EnvProduction) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (*Properties, error) {
	p := &Properties{}
	if err := env.Parse(p); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Production reports whether the app runs with production hardening.
func (p *Properties) Production() bool {
	return strings.EqualFold(p.Env, EnvProduction)
}

// Validate rejects combinations the app cannot start with.
func (p *Properties) Validate() error {
	if p.Production() && p.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	switch p.Session.Store {
	case SessionStoreMongo, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", p.Session.Store)
	}
	switch p.Images.Backend {
	case ImagesMinio, ImagesDisk:
	default:
		return fmt.Errorf("unknown IMAGES_BACKEND %q", p.Images.Backend)
	}
	if p.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}
