package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const (
	CommentaryFallback      = "Nice one!"
	CommentaryEmptyFallback = "Good move!"

	commentaryTemperature = 0.9
	commentarySystemText  = "You are a friendly, encouraging AI who uses simple and clear language."
)

// CommentaryRequest describes the position right after the computer moved.
type CommentaryRequest struct {
	Board      string
	LastMove   int
	IsWinner   bool
	WinnerName string
}

// CommentaryService returns a short remark on the game. It never fails: any error yields a fallback line,
// and so does a service built without a generator.
type CommentaryService interface {
	Comment(ctx context.Context, req CommentaryRequest) string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type commentaryService struct {
	logger    *slog.Logger
	generator contentGenerator
	model     string
}

func NewCommentaryService(logger *slog.Logger, generator contentGenerator, model string) CommentaryService {
	return &commentaryService{
		logger:    logger.With("component", "commentary"),
		generator: generator,
		model:     model,
	}
}

func (that *commentaryService) Comment(ctx context.Context, req CommentaryRequest) string {
	if that.generator == nil {
		return CommentaryFallback
	}

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](commentaryTemperature),
		SystemInstruction: genai.NewContentFromText(commentarySystemText, genai.RoleUser),
	}

	resp, err := that.generator.GenerateContent(ctx, that.model, genai.Text(commentaryPrompt(req)), config)
	if err != nil {
		that.logger.Warn("commentary request failed", "error", err)
		return CommentaryFallback
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return CommentaryEmptyFallback
	}

	return text
}

func commentaryPrompt(req CommentaryRequest) string {
	status := "The game is still going."
	if req.IsWinner {
		status = req.WinnerName + " just won!"
	}

	return fmt.Sprintf(`You are 'Cerebro', a friendly and helpful AI companion.
A player named %s is playing Tic-Tac-Toe with you.
Board: %s. Last move at %d.
%s

Provide a very short (max 12 words) friendly, encouraging, and easy-to-understand comment.
Do NOT use difficult words. Be like a helpful friend who enjoys the game.`,
		req.WinnerName, req.Board, req.LastMove, status)
}
