package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/modules/realtime"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/collab"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/config"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/eventstore"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/httpserver"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/mailer"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/metrics"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/mongo"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/opensearch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/pg"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/presence"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/redis"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/tracking"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"jobfinders"`
	TemplatesPath string `env:"NOTIFY_TEMPLATES_PATH"`

	OpenSearchEnabled bool `env:"OPENSEARCH_ENABLED" envDefault:"false"`
	NATSEnabled       bool `env:"NATS_ENABLED" envDefault:"false"`
	EmailEnabled      bool `env:"EMAIL_FALLBACK_ENABLED" envDefault:"false"`

	MetricsPollInterval time.Duration `env:"METRICS_POLL_INTERVAL" envDefault:"5s"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("realtime service exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	log := logger.New(logger.WithEnvironment(appCfg.Env, "realtime"))
	logger.SetAsDefault(log)

	// Postgres: durable event mirror and dead letters.
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return fmt.Errorf("load postgres config: %w", err)
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	eventStore, err := eventstore.NewPostgresStore(pool)
	if err != nil {
		return err
	}
	var deadLetters eventstore.DeadLetterStore
	deadLetters, err = eventstore.NewPostgresDeadLetterStore(pool)
	if err != nil {
		return err
	}

	// Optional S3 export of dead letters.
	var s3Cfg eventstore.S3Config
	if err := config.Load(&s3Cfg); err != nil {
		return fmt.Errorf("load s3 config: %w", err)
	}
	if s3Cfg.Bucket != "" {
		deadLetters, err = eventstore.NewArchivingDeadLetterStore(ctx, deadLetters, s3Cfg,
			eventstore.WithArchiverLogger(log))
		if err != nil {
			return fmt.Errorf("build dead-letter archiver: %w", err)
		}
	}

	// Mongo: notification records behind the pull API.
	var mongoCfg mongo.Config
	if err := config.Load(&mongoCfg); err != nil {
		return fmt.Errorf("load mongo config: %w", err)
	}
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, appCfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()
	notifications, err := notify.NewMongoStorage(db.Collection("notifications"))
	if err != nil {
		return err
	}

	// Redis: presence keys for the wider platform.
	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return fmt.Errorf("load redis config: %w", err)
	}
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	var presenceCfg presence.Config
	if err := config.Load(&presenceCfg); err != nil {
		return fmt.Errorf("load presence config: %w", err)
	}
	tracker, err := presence.NewTracker(redisClient, presenceCfg)
	if err != nil {
		return err
	}

	// Collaborator services.
	var collabCfg collab.Config
	if err := config.Load(&collabCfg); err != nil {
		return fmt.Errorf("load collaborator config: %w", err)
	}
	embedder, err := collab.NewEmbeddingClient(collabCfg)
	if err != nil {
		return err
	}
	matcher, err := collab.NewMatchingClient(collabCfg)
	if err != nil {
		return err
	}
	recommender, err := collab.NewRecommenderClient(collabCfg)
	if err != nil {
		return err
	}

	deps := realtime.Dependencies{
		Embedder:      embedder,
		Matcher:       matcher,
		Recommender:   recommender,
		EventStore:    eventStore,
		DeadLetters:   deadLetters,
		Notifications: notifications,
		Tracker:       tracker,
		Logger:        log,
	}

	healthChecks := []func(context.Context) error{
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
		mongo.Healthcheck(db.Client()),
	}

	// Optional interaction tracking via OpenSearch.
	if appCfg.OpenSearchEnabled {
		var osCfg opensearch.Config
		if err := config.Load(&osCfg); err != nil {
			return fmt.Errorf("load opensearch config: %w", err)
		}
		osClient, err := opensearch.New(ctx, osCfg)
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
		var trackCfg tracking.Config
		if err := config.Load(&trackCfg); err != nil {
			return fmt.Errorf("load tracking config: %w", err)
		}
		sink, err := tracking.NewSink(osClient, trackCfg)
		if err != nil {
			return err
		}
		deps.Recorder = sink
		healthChecks = append(healthChecks, opensearch.Healthcheck(osClient))
	}

	// Optional urgent-offline email fallback. Development keeps emails on
	// disk instead of going through Postmark.
	if appCfg.EmailEnabled {
		var sender mailer.EmailSender
		if appCfg.Env == "development" {
			sender = mailer.NewDevSender("./tmp/emails")
		} else {
			var mailCfg mailer.Config
			if err := config.Load(&mailCfg); err != nil {
				return fmt.Errorf("load mailer config: %w", err)
			}
			sender, err = mailer.NewPostmarkClient(mailCfg)
			if err != nil {
				return fmt.Errorf("build email sender: %w", err)
			}
		}
		var abCfg collab.AddressBookConfig
		if err := config.Load(&abCfg); err != nil {
			return fmt.Errorf("load address book config: %w", err)
		}
		addresses, err := collab.NewAddressBookClient(abCfg)
		if err != nil {
			return fmt.Errorf("build address book client: %w", err)
		}
		deps.Offline, err = notify.NewEmailFallback(sender, addresses)
		if err != nil {
			return err
		}
	}

	// Optional per-kind notification templates.
	if appCfg.TemplatesPath != "" {
		data, err := os.ReadFile(appCfg.TemplatesPath)
		if err != nil {
			return fmt.Errorf("read notification templates: %w", err)
		}
		deps.Catalog, err = notify.ParseCatalog(data)
		if err != nil {
			return fmt.Errorf("parse notification templates: %w", err)
		}
	}

	var rtCfg realtime.Config
	if err := config.Load(&rtCfg); err != nil {
		return fmt.Errorf("load realtime config: %w", err)
	}
	svc, err := realtime.New(rtCfg, deps)
	if err != nil {
		return fmt.Errorf("build realtime service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start processor: %w", err)
	}

	// Metrics: signal consumer plus stats poller, both stopped with the
	// observer context once intake is down.
	collector := metrics.NewCollector()
	obsCtx, stopObservers := context.WithCancel(ctx)
	defer stopObservers()
	go collector.Consume(obsCtx, svc.Monitor())
	go collector.Poll(obsCtx, statsSource{svc}, appCfg.MetricsPollInterval)

	// Optional NATS ingest bridge.
	var bridge *realtime.Bridge
	if appCfg.NATSEnabled {
		var natsCfg realtime.NATSConfig
		if err := config.Load(&natsCfg); err != nil {
			return fmt.Errorf("load nats config: %w", err)
		}
		bridge, err = realtime.NewBridge(natsCfg, svc, log)
		if err != nil {
			return fmt.Errorf("build nats bridge: %w", err)
		}
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("start nats bridge: %w", err)
		}
	}

	router := svc.Router(realtime.RouterOptions{
		Metrics:      collector.Handler(),
		HealthChecks: healthChecks,
	})

	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return fmt.Errorf("load http server config: %w", err)
	}
	srv := httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log))

	// Blocks until SIGINT/SIGTERM; HTTP intake stops here.
	runErr := srv.Run(ctx, router)

	// Shutdown order: intake is already stopped (HTTP above, NATS next),
	// then live connections get the shutdown notice and the processor
	// finishes its in-flight pass.
	if bridge != nil {
		if err := bridge.Stop(); err != nil {
			log.Error("failed to stop nats bridge", logger.Error(err))
		}
	}
	stopObservers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down realtime service", logger.Error(err))
	}

	return runErr
}

// statsSource adapts the service to the metrics poller.
type statsSource struct {
	svc *realtime.Service
}

func (s statsSource) Stats() dispatch.Stats { return s.svc.Stats() }
