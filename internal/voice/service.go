// Package voice turns a recorded request into a task description and a
// team guess.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/ai"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

const (
	mimeWAV      = "audio/wav"
	maxAudioSize = 20 << 20 // inline audio limit of the Gemini API
)

// TranscriberSource resolves the audio-capable model. *ai.Router satisfies it.
type TranscriberSource interface {
	Transcriber(ctx context.Context) (ai.AudioTranscriber, error)
}

type Service struct {
	source TranscriberSource
	lang   string
}

func NewService(source TranscriberSource, lang string) *Service {
	return &Service{source: source, lang: lang}
}

// Classify sends the WAV recording at audioPath to the model and matches
// the team it names against teams.
func (s *Service) Classify(ctx context.Context, audioPath string, teams []models.TeamProfile) (models.VoiceResult, error) {
	audio, err := readWAV(audioPath)
	if err != nil {
		return models.VoiceResult{}, err
	}

	transcriber, err := s.source.Transcriber(ctx)
	if err != nil {
		return models.VoiceResult{}, err
	}

	prompt, err := ai.NewPromptAssembler(s.lang).BuildVoicePrompt(teams)
	if err != nil {
		return models.VoiceResult{}, apperrors.ErrInternal.WithError(err)
	}

	logger.Debug(ctx, "sending recording", "path", audioPath, "bytes", len(audio), "teams", len(teams))
	raw, err := transcriber.Transcribe(ctx, prompt, audio, mimeWAV)
	if err != nil {
		logger.Error(ctx, "voice classification failed", err)
		return models.VoiceResult{}, err
	}

	result := ParseReply(raw, teams)
	logger.Info(ctx, "recording classified", "team_matched", result.TeamName != nil)
	return result, nil
}

// ParseReply reads the model's JSON reply. An unparseable reply becomes
// the description with no team; a team name is kept only when it matches
// a known team's name or lead, ignoring case.
func ParseReply(raw string, teams []models.TeamProfile) models.VoiceResult {
	obj, ok := ai.ExtractJSONObject(raw)
	if !ok {
		return models.VoiceResult{Description: strings.TrimSpace(raw)}
	}

	result := models.VoiceResult{Description: strings.TrimSpace(obj.String("description"))}

	needle := strings.ToLower(strings.TrimSpace(obj.String("team_name")))
	if needle == "" || needle == "null" {
		return result
	}
	for _, team := range teams {
		if strings.ToLower(team.Name) == needle || (team.TeamLead != "" && strings.ToLower(team.TeamLead) == needle) {
			name := team.Name
			result.TeamName = &name
			break
		}
	}
	return result
}

func readWAV(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.ErrInvalidAudio.WithError(err)
	}
	if info.Size() > maxAudioSize {
		return nil, apperrors.ErrInvalidAudio.WithContext("detail", fmt.Sprintf("recording is larger than %d MB", maxAudioSize>>20))
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrInvalidAudio.WithError(err)
	}
	if len(audio) < 12 || !bytes.Equal(audio[0:4], []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return nil, apperrors.ErrInvalidAudio.WithContext("detail", "missing RIFF/WAVE header")
	}
	return audio, nil
}
