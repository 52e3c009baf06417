package usecase

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	args := that.Called(ctx)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerService) RenamePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	args := that.Called(ctx, id, name)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGamePlayService struct {
	mock.Mock
}

func (that *mockGamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	args := that.Called(ctx, player)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlayService) NewGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	args := that.Called(ctx, player)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlayService) MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error) {
	args := that.Called(ctx, playerID, cell)
	result, _ := args.Get(0).(*service.TurnResult)
	return result, args.Error(1)
}

func (that *mockGamePlayService) BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error) {
	args := that.Called(ctx, playerID)
	result, _ := args.Get(0).(*service.TurnResult)
	return result, args.Error(1)
}

type mockScoreService struct {
	mock.Mock
}

func (that *mockScoreService) GetScore(ctx context.Context, playerID string) (*entity.Score, error) {
	args := that.Called(ctx, playerID)
	score, _ := args.Get(0).(*entity.Score)
	return score, args.Error(1)
}

type mockNarrator struct {
	mock.Mock
}

func (that *mockNarrator) Commentate(ctx context.Context, player *entity.Player, game *entity.Game, cell int) {
	that.Called(ctx, player, game, cell)
}

func (that *mockNarrator) Announce(ctx context.Context, player *entity.Player, event entity.GameEvent) {
	that.Called(ctx, player, event)
}
