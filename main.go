package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/internal/gateways/store"
	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/commands"
	"github.com/disgoorg/slotbot/slotbot/handlers"
	"github.com/disgoorg/slotbot/slotbot/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, slog.LevelInfo, false)))

	cfg, err := slotbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.AddSource))

	logger.LogSystem("Starting SlotBot",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("timezone", cfg.Bot.Timezone))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		logger.LogError("Failed to initialize record store", err, slog.String("backend", cfg.Store.Backend))
		os.Exit(-1)
	}
	st := store.New(backend)
	logger.LogSystem("Record store ready",
		slog.String("backend", backend.Name()),
		slog.Int("slots", len(st.Load(ctx).Slots)))

	b := slotbot.New(*cfg, version, commit)

	h := handler.New()
	commands.Register(h, b)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.MessageHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}
	if err = b.SetupDomain(st); err != nil {
		logger.LogError("Failed to setup slot services", err)
		os.Exit(-1)
	}
	defer b.Close()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...", slog.String("type", "sys"))
}

func newBackend(ctx context.Context, cfg *slotbot.Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case slotbot.StoreBackendSpaces:
		client, err := store.NewSpacesClient(ctx, cfg.Spaces)
		if err != nil {
			return nil, err
		}
		return store.NewSpacesBackend(client, cfg.Spaces.Bucket, cfg.Spaces.Object), nil
	default:
		return store.NewFileBackend(cfg.Store.Path), nil
	}
}
