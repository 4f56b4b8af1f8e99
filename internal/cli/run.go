package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizhub-service/internal/app"
	"quizhub-service/internal/config"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
	pgstore "quizhub-service/internal/infra/postgres"
	redisstore "quizhub-service/internal/infra/redis"
	"quizhub-service/internal/transport/command"
	"quizhub-service/internal/transport/telegram"
	"quizhub-service/internal/transport/ws"
)

// NewRunCmd builds the CLI subcommand to start the bot.
func NewRunCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath, *port)
		},
	}
}

func runBot(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var db *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		db, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var loader memory.PoolLoader = memory.NewStaticPoolLoader(samplePools())
	if db != nil {
		loader = pgstore.NewPoolStore(db)
	}

	poolTTL := config.TTLDuration(cfg.Quiz.PoolCacheTTL, 10*time.Minute)
	var pools app.PoolStore
	if redisClient != nil {
		pools = redisstore.NewPoolRepository(redisClient, loader, poolTTL)
	} else {
		pools = memory.NewPoolRepository(loader, poolTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 10*time.Minute)

	var users app.UserStore
	var chats app.ChatRegistry
	var sessions app.SessionStore
	if redisClient != nil {
		users = redisstore.NewUserStore(redisClient)
		registry := redisstore.NewChatRegistry(redisClient)
		if err := registry.Seed(ctx, cfg.Chats.Seed...); err != nil {
			return err
		}
		chats = registry
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		users = memory.NewUserStore()
		chats = memory.NewChatRegistry(cfg.Chats.Seed...)
		sessions = memory.NewSessionStore()
	}

	opts := app.Options{
		SessionTTL:           sessionTTL,
		BroadcastConcurrency: cfg.Broadcast.Concurrency,
		SendTimeout:          config.TTLDuration(cfg.Broadcast.SendTimeout, 10*time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	var bot *telegram.Bot
	if cfg.Telegram.Token != "" {
		bot = telegram.NewBot(telegram.NewClient(cfg.Telegram.Token))
		service := app.NewService(users, pools, chats, sessions, bot, opts)
		bot.Attach(command.NewRouter(service, cfg.Telegram.Admin), service)
	} else {
		// No token: run the websocket chat emulator instead.
		handler := ws.NewHandler()
		service := app.NewService(users, pools, chats, sessions, handler, opts)
		handler.Attach(command.NewRouter(service, cfg.Telegram.Admin), service)
		mux.HandleFunc("/ws", handler.ServeWS)
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	go func() {
		log.Printf("starting quizhub on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()
	if bot != nil {
		go func() {
			if err := bot.Run(runCtx); err != nil && err != context.Canceled {
				log.Printf("bot stopped: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}
	cancelRun()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// samplePools provides demo content for running without Postgres.
func samplePools() map[string]domain.Pool {
	return map[string]domain.Pool{
		"General": {
			Name: "General",
			Questions: []domain.Question{
				{
					Text:    "What is 2 + 2?",
					Options: []string{"3", "4", "5"},
					Correct: 1,
				},
				{
					Text:    "Which planet is known as the Red Planet?",
					Options: []string{"Venus", "Jupiter", "Mars"},
					Correct: 2,
				},
			},
		},
	}
}
