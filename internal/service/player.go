package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const maxNameLength = 20

var ErrInvalidName = errors.New("invalid player name")

type PlayerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	UpdatePlayer(ctx context.Context, player *entity.Player) error
	RenamePlayer(ctx context.Context, id, name string) (*entity.Player, error)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type playerService struct {
	playerRepo  playerRepo
	defaultName string
}

func NewPlayerService(playerRepo playerRepo, defaultName string) PlayerService {
	return &playerService{
		playerRepo:  playerRepo,
		defaultName: defaultName,
	}
}

func (that *playerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID:   uuid.NewString(),
		Name: that.defaultName,
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *playerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *playerService) UpdatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// RenamePlayer stores the display name upper-cased, the way the scoreboard shows it.
func (that *playerService) RenamePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: must be 1-%d characters", ErrInvalidName, maxNameLength)
	}

	player, err := that.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Name = name
	if err = that.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}
