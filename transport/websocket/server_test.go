package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
)

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	args := that.Called(ctx, playerID)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockGameUseCase) RenamePlayer(ctx context.Context, playerID, name string) (*entity.Player, error) {
	args := that.Called(ctx, playerID, name)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockGameUseCase) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) NewGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error) {
	args := that.Called(ctx, playerID, cell)
	result, _ := args.Get(0).(*service.TurnResult)
	return result, args.Error(1)
}

func (that *mockGameUseCase) BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error) {
	args := that.Called(ctx, playerID)
	result, _ := args.Get(0).(*service.TurnResult)
	return result, args.Error(1)
}

func (that *mockGameUseCase) GetScore(ctx context.Context, playerID string) (*entity.Score, error) {
	args := that.Called(ctx, playerID)
	score, _ := args.Get(0).(*entity.Score)
	return score, args.Error(1)
}

type testServer struct {
	useCase    *mockGameUseCase
	narrations chan service.Narration
	url        string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	return newThinkingTestServer(t, 0)
}

func newThinkingTestServer(t *testing.T, thinkDelay time.Duration) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	ts := &testServer{
		useCase:    &mockGameUseCase{},
		narrations: make(chan service.Narration, 1),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, ts.useCase, ts.narrations, thinkDelay)

	httpServer := httptest.NewServer(server.Handler(ctx))
	ts.url = "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"

	t.Cleanup(func() {
		cancel()
		httpServer.Close()
	})

	return ts
}

func (that *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	socket, _, err := websocket.DefaultDialer.Dial(that.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = socket.Close() })

	return socket
}

// connectAs expects the connect handshake for player and consumes its reply.
func (that *testServer) connectAs(t *testing.T, socket *websocket.Conn, player *entity.Player, game *entity.Game) {
	t.Helper()

	// the server sets GameID on the player it gets, so it gets its own copy
	connected := *player

	that.useCase.On("GetOrCreatePlayer", mock.Anything, "").Return(&connected, nil).Once()
	that.useCase.On("GetOrCreateGame", mock.Anything, player.ID).Return(game, nil).Once()
	that.useCase.On("GetScore", mock.Anything, player.ID).Return(&entity.Score{}, nil).Once()

	send(t, socket, actionConnect, Payload{})
	action, _ := receive(t, socket)
	require.Equal(t, actionConnect, action)
}

func send(t *testing.T, socket *websocket.Conn, action string, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, socket.WriteJSON(Message{Action: action, Payload: body}))
}

func receive(t *testing.T, socket *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, socket.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(t, socket.ReadJSON(&message))

	return message.Action, message.Payload
}

func receivePayload(t *testing.T, socket *websocket.Conn, wantAction string) Payload {
	t.Helper()

	action, raw := receive(t, socket)
	require.Equal(t, wantAction, action)

	var payload Payload
	require.NoError(t, json.Unmarshal(raw, &payload))

	return payload
}

func TestServer_Connect(t *testing.T) {
	t.Run("Registers a new player with a fresh game", func(t *testing.T) {
		// Given: a server that creates players
		ts := newTestServer(t)
		socket := ts.dial(t)

		player := &entity.Player{ID: "p1", Name: "ADIL"}
		game := entity.NewGame("g1", "p1")
		ts.useCase.On("GetOrCreatePlayer", mock.Anything, "").Return(player, nil).Once()
		ts.useCase.On("GetOrCreateGame", mock.Anything, "p1").Return(game, nil).Once()
		ts.useCase.On("GetScore", mock.Anything, "p1").Return(&entity.Score{Human: 2}, nil).Once()

		// When: the client connects without an ID
		send(t, socket, actionConnect, Payload{})

		// Then: the reply carries the player, the game and the tally
		payload := receivePayload(t, socket, actionConnect)
		require.NotNil(t, payload.Player)
		assert.Equal(t, "p1", payload.Player.ID)
		assert.Equal(t, "g1", payload.Player.GameID)
		assert.Equal(t, "g1", payload.Game.ID)
		assert.Equal(t, int64(2), payload.Score.Human)
		ts.useCase.AssertExpectations(t)
	})

	t.Run("Resumes the computer's pending move", func(t *testing.T) {
		// Given: a stored game where the computer has yet to reply
		ts := newTestServer(t)
		socket := ts.dial(t)

		player := &entity.Player{ID: "p1", GameID: "g1"}
		pending := entity.NewGame("g1", "p1")
		pending.Board[4] = entity.PlayerX
		pending.Turn = entity.PlayerO

		replied := *pending
		replied.Board[0] = entity.PlayerO
		replied.Turn = entity.PlayerX

		ts.useCase.On("GetOrCreatePlayer", mock.Anything, "p1").Return(player, nil).Once()
		ts.useCase.On("GetOrCreateGame", mock.Anything, "p1").Return(pending, nil).Once()
		ts.useCase.On("GetScore", mock.Anything, "p1").Return(&entity.Score{}, nil).Once()
		ts.useCase.On("BotTurn", mock.Anything, "p1").Return(&service.TurnResult{Player: player, Game: &replied, Cell: 0}, nil).Once()

		// When: the player reconnects
		send(t, socket, actionConnect, Payload{Player: &entity.Player{ID: "p1"}})

		// Then: the connect reply is followed by the computer's move
		receivePayload(t, socket, actionConnect)
		payload := receivePayload(t, socket, actionGameTurn)
		require.NotNil(t, payload.Cell)
		assert.Equal(t, 0, *payload.Cell)
		assert.Equal(t, entity.PlayerO, payload.Game.Board[0])
		ts.useCase.AssertExpectations(t)
	})

	t.Run("Requires connect before anything else", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)

		send(t, socket, actionGameTurn, Payload{})

		payload := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, "connect first", payload.Error)
		ts.useCase.AssertNotCalled(t, "MakeTurn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects unknown actions", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)

		send(t, socket, "game:join", Payload{})

		payload := receivePayload(t, socket, "game:join")
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Survives a malformed message", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)

		require.NoError(t, socket.WriteMessage(websocket.TextMessage, []byte("{not json")))
		send(t, socket, "noop", Payload{})

		payload := receivePayload(t, socket, "noop")
		assert.Equal(t, "unknown action", payload.Error)
	})
}

func TestServer_GameTurn(t *testing.T) {
	player := &entity.Player{ID: "p1", Name: "ADIL", GameID: "g1"}

	t.Run("Sends the human move and the computer reply", func(t *testing.T) {
		// Given: a connected player
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		afterHuman := entity.NewGame("g1", "p1")
		afterHuman.Board[4] = entity.PlayerX
		afterHuman.Turn = entity.PlayerO

		afterBot := *afterHuman
		afterBot.Board[0] = entity.PlayerO
		afterBot.Turn = entity.PlayerX

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 4).Return(&service.TurnResult{Player: player, Game: afterHuman, Cell: 4}, nil).Once()
		ts.useCase.On("BotTurn", mock.Anything, "p1").Return(&service.TurnResult{Player: player, Game: &afterBot, Cell: 0}, nil).Once()

		// When: the human plays the center
		cell := 4
		send(t, socket, actionGameTurn, Payload{Cell: &cell})

		// Then: two updates arrive in order
		first := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, 4, *first.Cell)
		assert.Equal(t, entity.PlayerO, first.Game.Turn)

		second := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, 0, *second.Cell)
		assert.Equal(t, entity.PlayerX, second.Game.Turn)
		ts.useCase.AssertExpectations(t)
	})

	t.Run("The computer stays idle after a winning human move", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		finished := entity.NewGame("g1", "p1")
		finished.Status = entity.StatusFinished
		finished.Winner = entity.PlayerX
		finished.Turn = entity.EmptyCell

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 2).
			Return(&service.TurnResult{Player: player, Game: finished, Cell: 2, Score: &entity.Score{Human: 1}}, nil).Once()

		cell := 2
		send(t, socket, actionGameTurn, Payload{Cell: &cell})

		payload := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, entity.PlayerX, payload.Game.Winner)
		assert.Equal(t, int64(1), payload.Score.Human)

		// the score request is answered only after the turn handler returned
		ts.useCase.On("GetScore", mock.Anything, "p1").Return(&entity.Score{Human: 1}, nil).Once()
		send(t, socket, actionGetScore, Payload{})
		receivePayload(t, socket, actionGetScore)

		ts.useCase.AssertNotCalled(t, "BotTurn", mock.Anything, mock.Anything)
	})

	t.Run("Stays quiet when the computer move was already played", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		afterHuman := entity.NewGame("g1", "p1")
		afterHuman.Board[4] = entity.PlayerX
		afterHuman.Turn = entity.PlayerO

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 4).Return(&service.TurnResult{Player: player, Game: afterHuman, Cell: 4}, nil).Once()
		ts.useCase.On("BotTurn", mock.Anything, "p1").Return(nil, fmt.Errorf("bot failed to make turn: %w", service.ErrNotBotTurn)).Once()
		ts.useCase.On("GetScore", mock.Anything, "p1").Return(&entity.Score{}, nil).Once()

		cell := 4
		send(t, socket, actionGameTurn, Payload{Cell: &cell})
		receivePayload(t, socket, actionGameTurn)

		// the next frame answers the score request, so no error was sent in between
		send(t, socket, actionGetScore, Payload{})
		receivePayload(t, socket, actionGetScore)
		ts.useCase.AssertExpectations(t)
	})

	t.Run("Reports a rejected move with the current game", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		game := entity.NewGame("g1", "p1")
		ts.connectAs(t, socket, player, game)

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 4).
			Return(&service.TurnResult{Player: player, Game: game, Cell: 4}, fmt.Errorf("failed to make turn: %w", apperror.ErrCellOccupied)).Once()

		cell := 4
		send(t, socket, actionGameTurn, Payload{Cell: &cell})

		payload := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, apperror.ErrCellOccupied.Error(), payload.Error)
		assert.Equal(t, "g1", payload.Game.ID)
	})

	t.Run("Requires a cell", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		send(t, socket, actionGameTurn, Payload{})

		payload := receivePayload(t, socket, actionGameTurn)
		assert.Equal(t, "Cell is required", payload.Error)
	})
}

func TestServer_PlayerAndGameActions(t *testing.T) {
	player := &entity.Player{ID: "p1", Name: "ADIL", GameID: "g1"}

	t.Run("Renames the player", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("RenamePlayer", mock.Anything, "p1", "alice").Return(&entity.Player{ID: "p1", Name: "ALICE"}, nil).Once()

		send(t, socket, actionRename, Payload{Name: "alice"})

		payload := receivePayload(t, socket, actionRename)
		assert.Equal(t, "ALICE", payload.Player.Name)
	})

	t.Run("Explains an invalid name", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("RenamePlayer", mock.Anything, "p1", "").
			Return(nil, fmt.Errorf("failed to rename player: %w", service.ErrInvalidName)).Once()

		send(t, socket, actionRename, Payload{})

		payload := receivePayload(t, socket, actionRename)
		assert.Equal(t, service.ErrInvalidName.Error(), payload.Error)
	})

	t.Run("Reset starts a new board and returns the tally", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("NewGame", mock.Anything, "p1").Return(entity.NewGame("g2", "p1"), nil).Once()
		ts.useCase.On("GetScore", mock.Anything, "p1").Return(&entity.Score{Computer: 1, Draws: 4}, nil).Once()

		send(t, socket, actionResetGame, Payload{})

		payload := receivePayload(t, socket, actionResetGame)
		assert.Equal(t, "g2", payload.Game.ID)
		assert.Equal(t, &entity.Score{Computer: 1, Draws: 4}, payload.Score)
	})

	t.Run("New game resumes the current board", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("GetOrCreateGame", mock.Anything, "p1").Return(entity.NewGame("g1", "p1"), nil).Once()

		send(t, socket, actionNewGame, Payload{})

		payload := receivePayload(t, socket, actionNewGame)
		assert.Equal(t, "g1", payload.Game.ID)
	})
}

func TestServer_Narrations(t *testing.T) {
	player := &entity.Player{ID: "p1", Name: "ADIL", GameID: "g1"}

	t.Run("Forwards commentary to the player", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.narrations <- service.Narration{PlayerID: "p1", Commentary: "Nice one!"}

		action, raw := receive(t, socket)
		require.Equal(t, actionCommentary, action)

		var payload CommentaryPayload
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "Nice one!", payload.Text)
	})

	t.Run("Forwards speech to the player", func(t *testing.T) {
		ts := newTestServer(t)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		speech := &entity.Speech{Event: entity.EventDraw, MimeType: "audio/wav", Audio: []byte{7, 7}}
		ts.narrations <- service.Narration{PlayerID: "p1", Speech: speech}

		action, raw := receive(t, socket)
		require.Equal(t, actionVoice, action)

		var payload entity.Speech
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, *speech, payload)
	})
}

func TestServer_Think(t *testing.T) {
	t.Run("Stops waiting when the connection goes away", func(t *testing.T) {
		server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), &mockGameUseCase{}, nil, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, server.think(ctx), context.Canceled)
	})

	t.Run("Returns after the delay", func(t *testing.T) {
		server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), &mockGameUseCase{}, nil, time.Millisecond)

		require.NoError(t, server.think(context.Background()))
	})
}

func TestServer_Disconnect(t *testing.T) {
	const thinkDelay = 300 * time.Millisecond

	player := &entity.Player{ID: "p1", Name: "ADIL", GameID: "g1"}

	pendingGame := func() *entity.Game {
		game := entity.NewGame("g1", "p1")
		game.Board[4] = entity.PlayerX
		game.Turn = entity.PlayerO
		return game
	}

	t.Run("Leaving during the think delay drops the computer move", func(t *testing.T) {
		// Given: a connected player and a computer that takes its time
		ts := newThinkingTestServer(t, thinkDelay)
		socket := ts.dial(t)
		ts.connectAs(t, socket, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 4).Return(&service.TurnResult{Player: player, Game: pendingGame(), Cell: 4}, nil).Once()
		ts.useCase.On("BotTurn", mock.Anything, "p1").Return(&service.TurnResult{Player: player, Game: pendingGame()}, nil).Maybe()

		// When: the human moves and closes the socket before the computer answers
		cell := 4
		send(t, socket, actionGameTurn, Payload{Cell: &cell})
		receivePayload(t, socket, actionGameTurn)
		require.NoError(t, socket.Close())

		// Then: the computer never plays for the departed connection
		time.Sleep(2 * thinkDelay)
		ts.useCase.AssertNotCalled(t, "BotTurn", mock.Anything, mock.Anything)
	})

	t.Run("Reconnecting during the think delay plays the computer once", func(t *testing.T) {
		// Given: the first connection left while the computer was thinking
		ts := newThinkingTestServer(t, thinkDelay)
		first := ts.dial(t)
		ts.connectAs(t, first, player, entity.NewGame("g1", "p1"))

		ts.useCase.On("MakeTurn", mock.Anything, "p1", 4).Return(&service.TurnResult{Player: player, Game: pendingGame(), Cell: 4}, nil).Once()

		cell := 4
		send(t, first, actionGameTurn, Payload{Cell: &cell})
		receivePayload(t, first, actionGameTurn)
		require.NoError(t, first.Close())

		replied := pendingGame()
		replied.Board[0] = entity.PlayerO
		replied.Turn = entity.PlayerX
		ts.useCase.On("BotTurn", mock.Anything, "p1").Return(&service.TurnResult{Player: player, Game: replied, Cell: 0}, nil)

		// When: the player comes back with the computer still to move
		second := ts.dial(t)
		ts.connectAs(t, second, player, pendingGame())

		// Then: only the new connection gets the computer's move
		payload := receivePayload(t, second, actionGameTurn)
		assert.Equal(t, 0, *payload.Cell)

		time.Sleep(2 * thinkDelay)
		ts.useCase.AssertNumberOfCalls(t, "BotTurn", 1)
	})
}
