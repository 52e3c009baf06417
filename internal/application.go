package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
	"github.com/rocketscienceinc/tictactoe-solo/internal/transport/gemini"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	"github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
)

// narrationBuffer bounds how many finished comments and clips may wait for delivery.
const narrationBuffer = 64

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString, err := conf.Redis.GetRedisAddr()
	if err != nil {
		return fmt.Errorf("invalid redis config: %w", err)
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage, conf.Redis.SessionTTL)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.SessionTTL)
	scoreRepo := repository.NewScoreRepository(redisStorage, conf.Redis.SessionTTL)

	playerService := service.NewPlayerService(playerRepo, conf.Player.DefaultName)
	scoreService := service.NewScoreService(scoreRepo)
	gamePlayService := service.NewGamePlayService(
		logger,
		playerService,
		service.NewGameService(gameRepo),
		scoreService,
		service.NewBotService(),
	)

	narrator := newNarrator(ctx, logger, conf)
	defer narrator.Wait()

	gameUseCase := usecase.NewGameUseCase(logger, playerService, gamePlayService, scoreService, narrator)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.New(logger, gameUseCase)
		if httpErr := httpServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, narrator.Events(), conf.Bot.ThinkDelay)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newNarrator falls back to canned commentary and no voice when a Gemini client cannot be built.
func newNarrator(ctx context.Context, logger *slog.Logger, conf *config.Config) *service.Narrator {
	log := logger.With("component", "app")

	commentary := service.NewCommentaryService(logger, nil, conf.Commentary.Model)
	commentaryModels, err := gemini.New(ctx, conf.Commentary.URL, conf.Commentary.APIKey, conf.Commentary.Timeout)
	if err != nil {
		log.Warn("commentary disabled, using fallback lines", "error", err)
	} else {
		commentary = service.NewCommentaryService(logger, commentaryModels, conf.Commentary.Model)
	}

	if !conf.Voice.Enabled {
		return service.NewNarrator(logger, commentary, nil, narrationBuffer)
	}

	voiceModels, err := gemini.New(ctx, conf.Voice.URL, conf.Voice.APIKey, conf.Voice.Timeout)
	if err != nil {
		log.Warn("voice disabled", "error", err)
		return service.NewNarrator(logger, commentary, nil, narrationBuffer)
	}

	voice := service.NewVoiceService(logger, voiceModels, conf.Voice.Model, conf.Voice.VoiceName)

	return service.NewNarrator(logger, commentary, voice, narrationBuffer)
}
