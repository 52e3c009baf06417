package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
)

const (
	shutdownTimeout = 5 * time.Second

	// messageBuffer lets the reader keep draining the socket while a handler is busy.
	messageBuffer = 8
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	RenamePlayer(ctx context.Context, playerID, name string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	NewGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error)
	BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error)

	GetScore(ctx context.Context, playerID string) (*entity.Score, error)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	narrations <-chan service.Narration
	thinkDelay time.Duration

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase, narrations <-chan service.Narration, thinkDelay time.Duration) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		narrations:  narrations,
		thinkDelay:  thinkDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		connections: make(map[string]*connection),
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionRename] = server.handleRename
	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionResetGame] = server.handleResetGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGetScore] = server.handleGetScore

	return server
}

// Handler serves the socket on /ws and forwards narrations until ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	go that.forwardNarrations(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	socket, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(socket)

	// the reader cancels connCtx when the socket drops, which abandons a computer move still thinking
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer that.disconnect(conn)

	go conn.keepAlive(connCtx.Done())

	log.Info("WebSocket connection established")

	if err = that.handleMessages(connCtx, cancel, conn); err != nil {
		log.Info("connection closed", "playerID", conn.playerID, "reason", err)
	}
}

// handleMessages - processes messages from the client one at a time.
func (that *Server) handleMessages(ctx context.Context, cancel context.CancelFunc, conn *connection) error {
	if err := conn.extendReadDeadline(); err != nil {
		return err
	}
	conn.socket.SetPongHandler(func(string) error {
		return conn.extendReadDeadline()
	})

	messages := make(chan *Message, messageBuffer)
	readErr := make(chan error, 1)
	go that.readMessages(ctx, cancel, conn, messages, readErr)

	for {
		select {
		case <-ctx.Done():
			select {
			case err := <-readErr:
				return err
			default:
				return ctx.Err()
			}
		case message, ok := <-messages:
			if !ok {
				return <-readErr
			}

			if err := that.dispatch(ctx, conn, message); err != nil {
				return err
			}
		}
	}
}

// readMessages feeds messages until the socket fails, then cancels ctx and closes messages.
func (that *Server) readMessages(ctx context.Context, cancel context.CancelFunc, conn *connection, messages chan<- *Message, readErr chan<- error) {
	log := that.logger.With("method", "readMessages")

	defer close(messages)
	defer cancel()

	for {
		message, err := conn.read()
		if errors.Is(err, errMalformedMessage) {
			log.Warn("skipping message", "error", err)
			continue
		}

		if err != nil {
			readErr <- err
			return
		}

		select {
		case messages <- message:
		case <-ctx.Done():
			readErr <- ctx.Err()
			return
		}
	}
}

// dispatch runs the handler for message. Only failures to write to the client are returned.
func (that *Server) dispatch(ctx context.Context, conn *connection, message *Message) error {
	log := that.logger.With("method", "dispatch")

	handler, ok := that.handlers[message.Action]
	if !ok {
		return that.sendErrorResponse(conn, message.Action, "unknown action")
	}

	if message.Action != actionConnect && conn.playerID == "" {
		return that.sendErrorResponse(conn, message.Action, "connect first")
	}

	if err := handler(ctx, conn, message); err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
	}

	return nil
}

func (that *Server) register(conn *connection, playerID string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if conn.playerID != "" && conn.playerID != playerID {
		delete(that.connections, conn.playerID)
	}

	conn.playerID = playerID
	that.connections[playerID] = conn
}

func (that *Server) disconnect(conn *connection) {
	log := that.logger.With("method", "disconnect")

	that.connectionsMutex.Lock()
	if current, ok := that.connections[conn.playerID]; ok && current == conn {
		delete(that.connections, conn.playerID)
	}
	that.connectionsMutex.Unlock()

	if err := conn.close(); err != nil {
		log.Debug("failed to close connection", "error", err)
	}

	log.Info("player disconnected", "playerID", conn.playerID)
}

func (that *Server) lookup(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]
	return conn, ok
}

// forwardNarrations pushes commentary and speech to whichever connection the player has now.
func (that *Server) forwardNarrations(ctx context.Context) {
	log := that.logger.With("method", "forwardNarrations")

	for {
		select {
		case <-ctx.Done():
			return
		case narration, ok := <-that.narrations:
			if !ok {
				return
			}

			conn, found := that.lookup(narration.PlayerID)
			if !found {
				log.Debug("player is offline, narration dropped", "playerID", narration.PlayerID)
				continue
			}

			var err error
			if narration.Speech != nil {
				err = conn.send(actionVoice, narration.Speech)
			} else {
				err = conn.send(actionCommentary, CommentaryPayload{Text: narration.Commentary})
			}

			if err != nil {
				log.Error("failed to send narration", "playerID", narration.PlayerID, "error", err)
			}
		}
	}
}
