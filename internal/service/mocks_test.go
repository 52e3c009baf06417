package service

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/stretchr/testify/mock"
	"google.golang.org/genai"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

// Update hands the game registered for id to change, the way the store would after loading it.
func (that *mockGameRepo) Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	if err := change(game); err != nil {
		return game, err
	}

	return game, nil
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

// memGameRepo keeps games in memory and applies updates under one lock.
type memGameRepo struct {
	mutex sync.Mutex
	games map[string]entity.Game
}

func newMemGameRepo(games ...*entity.Game) *memGameRepo {
	repo := &memGameRepo{games: make(map[string]entity.Game)}
	for _, game := range games {
		repo.games[game.ID] = *game
	}
	return repo
}

func (that *memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.games[game.ID] = *game
	return nil
}

func (that *memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	return &game, nil
}

func (that *memGameRepo) Update(_ context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	if err := change(&game); err != nil {
		return &game, err
	}

	that.games[id] = game
	return &game, nil
}

func (that *memGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(that.games, id)
	return nil
}

type mockScoreRepo struct {
	mock.Mock
}

func (that *mockScoreRepo) Increment(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error) {
	args := that.Called(ctx, playerID, winner)
	score, _ := args.Get(0).(*entity.Score)
	return score, args.Error(1)
}

func (that *mockScoreRepo) GetByPlayerID(ctx context.Context, playerID string) (*entity.Score, error) {
	args := that.Called(ctx, playerID)
	score, _ := args.Get(0).(*entity.Score)
	return score, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (that *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := that.Called(ctx, model, contents, config)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
	}
}
