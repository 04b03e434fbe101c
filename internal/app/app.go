// Package app wires configuration, storage, the protocol client, the polling
// engine and the Telegram surface into one runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/config"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/extract"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/notify"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/p24"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/store"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/telegram"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/watch"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// Run starts the process in the configured mode and blocks until a shutdown
// signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting slot hunter",
		zap.String("mode", a.cfg.RunMode),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("interval", a.cfg.PollInterval),
		zap.Int("days_ahead", a.cfg.DaysAhead),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	defer func() { _ = repo.Close() }()
	a.log.Info("sqlite ready")

	client := p24.New(a.cfg.BookingAPI, a.cfg.RequestTimeout, a.log)
	checker := watch.NewChecker(client, a.cfg.DaysAhead, a.log)
	messenger := telegram.NewMessenger(a.bot, a.log)
	fanout := notify.New(messenger, repo, repo, a.cfg.ProviderHost, a.cfg.SendDelay, a.log)

	fetcher := extract.NewFetcher(a.cfg.RequestTimeout, a.log)
	extractor := extract.New(fetcher, a.cfg.ProviderHost, a.cfg.MaxRetries, a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()
	defer a.shutdownHTTP()

	switch a.cfg.RunMode {
	case "loop":
		scheduler := watch.NewScheduler(repo, checker, fanout, a.cfg.PollInterval, a.log)
		go scheduler.Run(ctx)
		return a.serveUpdates(ctx, extractor, checker, client)

	case "coordinator":
		producer := watch.NewProducer(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.log)
		defer func() { _ = producer.Close() }()
		coordinator := watch.NewCoordinator(repo, producer, a.cfg.PollInterval, a.log)
		go func() {
			if err := coordinator.Run(ctx); err != nil {
				a.log.Error("coordinator error", zap.Error(err))
			}
		}()
		return a.serveUpdates(ctx, extractor, checker, client)

	case "worker":
		reader := watch.NewReader(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.cfg.KafkaGroup)
		worker := watch.NewWorker(reader, repo, checker, fanout, a.log)
		return worker.Run(ctx)

	default:
		return fmt.Errorf("unknown run mode %q", a.cfg.RunMode)
	}
}

// serveUpdates drives the Telegram command surface until ctx is canceled.
func (a *App) serveUpdates(ctx context.Context, extractor *extract.Extractor, checker *watch.Checker, client *p24.Client) error {
	router := telegram.NewRouter(a.bot, a.log, a.repo, extractor, checker, client,
		a.cfg.AdminChatID, a.cfg.SelfCheckHold)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()
			return nil
		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdownHTTP() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
}
