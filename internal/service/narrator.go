package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// Narration is flavor produced in the background for one player: either a comment or a speech clip.
type Narration struct {
	PlayerID   string
	Commentary string
	Speech     *entity.Speech
}

// Narrator runs commentary and voice requests detached from the game loop and publishes
// their results on Events. Results that find the buffer full are dropped.
type Narrator struct {
	logger *slog.Logger

	commentary CommentaryService
	voice      VoiceService

	events chan Narration
	wg     sync.WaitGroup
}

// NewNarrator builds a narrator; voice may be nil to disable speech.
func NewNarrator(logger *slog.Logger, commentary CommentaryService, voice VoiceService, buffer int) *Narrator {
	return &Narrator{
		logger:     logger.With("component", "narrator"),
		commentary: commentary,
		voice:      voice,
		events:     make(chan Narration, buffer),
	}
}

func (that *Narrator) Events() <-chan Narration {
	return that.events
}

// Commentate asks for a remark on the computer's move at cell.
func (that *Narrator) Commentate(ctx context.Context, player *entity.Player, game *entity.Game, cell int) {
	req := CommentaryRequest{
		Board:      game.Board.String(),
		LastMove:   cell,
		IsWinner:   game.IsFinished() && game.Winner != entity.PlayerTie,
		WinnerName: player.WinnerName(game.Winner),
	}
	playerID := player.ID

	that.spawn(ctx, func(ctx context.Context) {
		text := that.commentary.Comment(ctx, req)
		that.publish(Narration{PlayerID: playerID, Commentary: text})
	})
}

// Announce speaks event to the player when voice is enabled.
func (that *Narrator) Announce(ctx context.Context, player *entity.Player, event entity.GameEvent) {
	if that.voice == nil {
		return
	}

	playerID, name := player.ID, player.Name

	that.spawn(ctx, func(ctx context.Context) {
		if speech := that.voice.Speak(ctx, event, name); speech != nil {
			that.publish(Narration{PlayerID: playerID, Speech: speech})
		}
	})
}

// Wait blocks until every started request has finished.
func (that *Narrator) Wait() {
	that.wg.Wait()
}

func (that *Narrator) spawn(ctx context.Context, task func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()
		task(detached)
	}()
}

func (that *Narrator) publish(narration Narration) {
	select {
	case that.events <- narration:
	default:
		that.logger.Warn("narration dropped, buffer is full", "playerID", narration.PlayerID)
	}
}
