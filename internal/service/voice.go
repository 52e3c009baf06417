package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/transport/gemini"
	"google.golang.org/genai"
)

// VoiceService turns a game event into speech. It returns nil when synthesis fails.
type VoiceService interface {
	Speak(ctx context.Context, event entity.GameEvent, playerName string) *entity.Speech
}

type voiceService struct {
	logger    *slog.Logger
	generator contentGenerator
	model     string
	voiceName string
}

func NewVoiceService(logger *slog.Logger, generator contentGenerator, model, voiceName string) VoiceService {
	return &voiceService{
		logger:    logger.With("component", "voice"),
		generator: generator,
		model:     model,
		voiceName: voiceName,
	}
}

func (that *voiceService) Speak(ctx context.Context, event entity.GameEvent, playerName string) *entity.Speech {
	log := that.logger.With("event", event)

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: that.voiceName},
			},
		},
	}

	resp, err := that.generator.GenerateContent(ctx, that.model, genai.Text(VoicePrompt(event, playerName)), config)
	if err != nil {
		log.Error("audio trigger failed", "error", err)
		return nil
	}

	data, ok := gemini.InlineData(resp)
	if !ok {
		log.Warn("no audio in response")
		return nil
	}

	return &entity.Speech{
		Event:    event,
		MimeType: data.MIMEType,
		Audio:    data.Data,
	}
}

// VoicePrompt is the line spoken for event.
func VoicePrompt(event entity.GameEvent, playerName string) string {
	switch event {
	case entity.EventHumanWin:
		return fmt.Sprintf("Wow! Great job %s, you won! You're really good at this.", playerName)
	case entity.EventComputerWin:
		return "I got this one! But don't worry, you're playing great. Try again?"
	case entity.EventDraw:
		return "It's a tie! We both played perfectly."
	default:
		return fmt.Sprintf("Your turn, %s!", playerName)
	}
}
