package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"yelpcamp/internal/auth"
	"yelpcamp/internal/config"
	securecrypto "yelpcamp/internal/crypto"
	"yelpcamp/internal/geocode"
	"yelpcamp/internal/graphqlapi"
	"yelpcamp/internal/httpclient"
	"yelpcamp/internal/images"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/secrets"
	"yelpcamp/internal/server"
	"yelpcamp/internal/services"
	"yelpcamp/internal/session"
	"yelpcamp/internal/validation"
	"yelpcamp/internal/views"
	"yelpcamp/internal/web"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer b.close(context.Background())
	cfg, log := b.cfg, b.log

	sessions, err := sessionManager(ctx, b)
	if err != nil {
		return err
	}

	store, uploads, imageHosts, err := imageStore(ctx, cfg)
	if err != nil {
		return err
	}

	var geocoder geocode.Geocoder = geocode.Noop{}
	if cfg.Mapbox.Token != "" {
		geocoder = geocode.NewMapbox(httpclient.New(5*time.Second), cfg.Mapbox.BaseURL, cfg.Mapbox.Token)
	} else {
		log.Warn("MAPBOX_TOKEN not provided; campgrounds are saved without coordinates")
	}

	campgrounds := services.NewCampgrounds(services.CampgroundDeps{
		Campgrounds: b.campgrounds,
		Reviews:     b.reviews,
		Users:       b.users,
		Images:      store,
		Geocoder:    geocoder,
		Audit:       b.audit,
		Log:         log,
	})
	reviews := services.NewReviews(b.campgrounds, b.reviews, b.audit, log)
	users := b.userService()

	renderer, err := views.NewRenderer(log)
	if err != nil {
		return err
	}

	var csrf *middleware.CSRFConfig
	if cfg.Security.CSRF {
		c := middleware.DefaultCSRFConfig()
		c.Secure = cfg.Production()
		csrf = &c
	}

	var waf *middleware.WAF
	if cfg.Security.CorazaDirectives != "" {
		waf, err = middleware.NewWAF(cfg.Security.CorazaDirectives, log)
		if err != nil {
			return err
		}
	}

	var gql http.Handler
	if cfg.GraphQL.Enabled {
		gcfg := graphqlapi.DefaultConfig()
		gcfg.AllowIntrospection = cfg.GraphQL.AllowIntrospection
		gql, err = graphqlapi.NewHandler(gcfg, campgrounds, log)
		if err != nil {
			return err
		}
	}

	app := web.New(web.Deps{
		Campgrounds: campgrounds,
		Reviews:     reviews,
		Users:       users,
		Validator:   validation.NewValidator(),
		Views:       renderer,
		Sessions:    sessions,
		CSRF:        csrf,
		WAF:         waf,
		AuthLimiter: middleware.NewIPRateLimit(cfg.Security.LoginRateInterval, cfg.Security.LoginRateBurst),
		GraphQL:     gql,
		Uploads:     uploads,
		Audit:       b.audit,
		Log:         log,
		Options: web.Options{
			Production: cfg.Production(),
			MapToken:   cfg.Mapbox.Token,
			BodyLimit:  cfg.HTTP.BodyLimit,
			MaxFiles:   cfg.Images.MaxFiles,
			ImageHosts: imageHosts,
		},
	})

	return server.New(app.Routes(), cfg.HTTP, log).Run(ctx)
}

// sessionManager picks the configured store and derives the cookie signing key
// from SESSION_SECRET, or from random bytes outside production.
func sessionManager(ctx context.Context, b *base) (*session.Manager, error) {
	cfg, log := b.cfg, b.log

	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreMongo:
		ms := session.NewMongoStore(b.db)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("session indexes: %w", err)
		}
		store = ms
	case config.SessionStoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		store = session.NewRedisStore(rdb)
	default:
		store = session.NewMemoryStore()
	}

	raw := []byte(cfg.Session.Secret)
	if len(raw) == 0 {
		random, err := securecrypto.RandomBytes(32)
		if err != nil {
			return nil, err
		}
		raw = random
		log.Info("SESSION_SECRET not provided; using ephemeral random key")
	}
	secret, err := secrets.NewSecureBuffer(raw)
	if err != nil {
		return nil, err
	}
	defer secret.Destroy()

	var tokens *auth.SessionTokens
	err = secret.Use(func(s []byte) error {
		key, err := securecrypto.DeriveKey(s, nil, securecrypto.PurposeSessionToken, 32)
		if err != nil {
			return err
		}
		tokens, err = auth.NewSessionTokens(key, cfg.Session.TTL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}
	log.Redact("session signing key derived", "secret")

	return session.NewManager(store, tokens, session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Path:   "/",
		Secure: cfg.Production(),
	}, log), nil
}

// imageStore returns the upload backend, the handler serving local uploads (nil for
// object storage) and extra image hosts for the content security policy.
func imageStore(ctx context.Context, cfg *config.Properties) (images.Store, http.Handler, []string, error) {
	if cfg.Images.Backend == config.ImagesDisk {
		disk := images.NewDiskStore(cfg.Images.Dir, cfg.Images.Folder, cfg.Images.MaxSize)
		return disk, disk.Handler(), nil, nil
	}

	mcfg := images.MinioConfig{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
		PublicURL: cfg.S3.PublicURL,
		Folder:    cfg.Images.Folder,
		MaxSize:   cfg.Images.MaxSize,
	}
	client, err := images.NewMinioClient(mcfg)
	if err != nil {
		return nil, nil, nil, err
	}
	ms := images.NewMinioStore(client, mcfg)
	if err := ms.EnsureBucket(ctx); err != nil {
		return nil, nil, nil, err
	}
	return ms, nil, []string{imageOrigin(mcfg)}, nil
}

func imageOrigin(cfg images.MinioConfig) string {
	if cfg.PublicURL != "" {
		if u, err := url.Parse(cfg.PublicURL); err == nil && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
