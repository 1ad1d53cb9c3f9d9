package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/medication-bot/internal/command"
	"github.com/ykvlv/medication-bot/internal/config"
	"github.com/ykvlv/medication-bot/internal/httpapi"
	"github.com/ykvlv/medication-bot/internal/line"
	"github.com/ykvlv/medication-bot/internal/metrics"
	"github.com/ykvlv/medication-bot/internal/notify"
	"github.com/ykvlv/medication-bot/internal/reminder"
	"github.com/ykvlv/medication-bot/internal/scheduler"
	"github.com/ykvlv/medication-bot/internal/store"
	"github.com/ykvlv/medication-bot/internal/telegram"
)

// messenger is what both platform adapters provide.
type messenger interface {
	command.Replier
	notify.Pusher
}

type App struct {
	cfg     config.Config
	log     *zap.Logger
	sched   *scheduler.Scheduler
	journal store.Journal
	interp  *command.Interpreter
	poller  *telegram.Poller
	httpSrv *http.Server
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	metrics.MustRegister()

	a := &App{cfg: cfg, log: log}

	var (
		recorder   notify.Recorder
		deliveries httpapi.Deliveries
	)
	if cfg.JournalPath != "" {
		j, err := store.OpenSQLite(ctx, cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		a.journal = j
		recorder, deliveries = j, j
		log.Info("delivery journal ready", zap.String("path", cfg.JournalPath))
	}

	kw := command.Keywords{
		Ack:      cfg.AckKeyword,
		Setup:    cfg.SetupKeyword,
		Status:   cfg.StatusKeyword,
		ShowMenu: cfg.ShowMenuKeyword,
		HideMenu: cfg.HideMenuKeyword,
	}

	var (
		msgr    messenger
		menu    command.MenuLinker
		lineCli *line.Client
		tgBot   *tgbotapi.BotAPI
	)
	switch cfg.Platform {
	case config.PlatformTelegram:
		tgBot, err = tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			a.closeJournal()
			return nil, err
		}
		tgBot.Debug = false
		m := telegram.NewMessenger(tgBot, []string{kw.Ack, kw.Setup, kw.Status})
		msgr, menu = m, m
	default:
		lineCli, err = line.NewClient(cfg.LineChannelSecret, cfg.LineChannelAccessToken, cfg.LineRichMenuID)
		if err != nil {
			a.closeJournal()
			return nil, err
		}
		msgr = lineCli
		if lineCli.HasMenu() {
			menu = lineCli
		}
	}

	a.sched = scheduler.New(log.Named("scheduler"), loc, cfg.TickInterval)
	sender := notify.New(msgr, recorder, log.Named("notify"))
	machine := reminder.New(store.NewMemory(), a.sched, sender, log.Named("reminder"),
		reminder.Config{AckKeyword: kw.Ack, Location: loc})
	a.interp = command.NewInterpreter(machine, msgr, menu, kw, log.Named("command"))

	r := chi.NewRouter()
	httpapi.NewServer(machine, deliveries, loc, log.Named("http")).Register(r)
	if lineCli != nil {
		r.Post("/webhook", line.NewWebhook(lineCli, a.interp, log.Named("webhook")).ServeHTTP)
	}
	if tgBot != nil {
		a.poller = telegram.NewPoller(tgBot, a.interp, log.Named("telegram"))
	}

	a.httpSrv = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting medication-bot",
		zap.String("platform", a.cfg.Platform),
		zap.String("http", a.cfg.HTTPAddr()),
		zap.String("tz", a.cfg.TZName),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.closeJournal()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		a.sched.Run(ctx)
		return nil
	})

	if a.poller != nil {
		g.Go(func() error { return a.poller.Run(ctx) })
	}

	return g.Wait()
}

func (a *App) closeJournal() {
	if a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		a.log.Warn("journal close error", zap.Error(err))
	}
	a.journal = nil
}
