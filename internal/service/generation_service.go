package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/pkg/ai"
)

// ErrGenerationFailed wraps adapter failures so handlers can map them to a
// single upstream-error status.
var ErrGenerationFailed = errors.New("content generation failed")

// fallbackTitle is used when the adapter output yields no usable title.
const fallbackTitle = "Atividade Gerada"

// maxGeneratedTitle mirrors the title column size.
const maxGeneratedTitle = 200

// GenerationService drafts assignment content and grading feedback through
// the configured AI adapter. Output is always instructor-reviewed before
// being saved; nothing here writes to the database.
type GenerationService interface {
	GenerateAssignment(ctx context.Context, payload dto.GenerateRequest) (dto.GeneratedContent, error)
	GenerateFeedback(ctx context.Context, instructorID uint, payload dto.GenerateFeedbackRequest) (dto.GeneratedFeedback, error)
}

type generationService struct {
	generator   ai.Generator
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewGenerationService builds a generation service around an adapter.
func NewGenerationService(
	generator ai.Generator,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	timeout time.Duration,
	logger zerolog.Logger,
) GenerationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &generationService{
		generator:   generator,
		submissions: submissions,
		validator:   validate,
		timeout:     timeout,
		logger:      logger.With().Str("component", "generation_service").Logger(),
	}
}

func (s *generationService) GenerateAssignment(ctx context.Context, payload dto.GenerateRequest) (dto.GeneratedContent, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GeneratedContent{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(ctx, BuildAssignmentPrompt(payload))
	if err != nil {
		s.logger.Error().Err(err).Msg("assignment generation failed")
		return dto.GeneratedContent{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return ParseGeneratedContent(raw), nil
}

// GenerateFeedback drafts feedback for one submission. The instructor must
// own the assignment the submission answers.
func (s *generationService) GenerateFeedback(ctx context.Context, instructorID uint, payload dto.GenerateFeedbackRequest) (dto.GeneratedFeedback, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GeneratedFeedback{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GeneratedFeedback{}, ErrSubmissionNotFound
		}
		return dto.GeneratedFeedback{}, err
	}

	if submission.Assignment.InstructorID != instructorID {
		return dto.GeneratedFeedback{}, ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildFeedbackPrompt(submission.Assignment.Title, submission.Assignment.Description, submission.ResponseText)
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("feedback generation failed")
		return dto.GeneratedFeedback{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return dto.GeneratedFeedback{Feedback: strings.TrimSpace(raw)}, nil
}

// BuildAssignmentPrompt assembles the adapter prompt. Optional hints are
// omitted entirely when absent rather than sent as empty fields.
func BuildAssignmentPrompt(payload dto.GenerateRequest) string {
	var b strings.Builder

	b.WriteString("Crie uma atividade escolar sobre o seguinte tema: ")
	b.WriteString(strings.TrimSpace(payload.Prompt))
	b.WriteString("\n")

	if subject := strings.TrimSpace(payload.Subject); subject != "" {
		b.WriteString("Disciplina: ")
		b.WriteString(subject)
		b.WriteString("\n")
	}

	if difficulty := strings.TrimSpace(payload.Difficulty); difficulty != "" {
		b.WriteString("Nível de dificuldade: ")
		b.WriteString(difficulty)
		b.WriteString("\n")
	}

	if kind := strings.TrimSpace(payload.Type); kind != "" {
		b.WriteString("Tipo de atividade: ")
		b.WriteString(kind)
		b.WriteString("\n")
	}

	b.WriteString("\nResponda exatamente neste formato:\n")
	b.WriteString("TÍTULO: [título da atividade]\n")
	b.WriteString("DESCRIÇÃO:\n[descrição detalhada da atividade]\n")

	return b.String()
}

func buildFeedbackPrompt(title, description, responseText string) string {
	var b strings.Builder

	b.WriteString("Você é um professor corrigindo a resposta de um aluno.\n")
	b.WriteString("Atividade: ")
	b.WriteString(title)
	b.WriteString("\n")
	if description != "" {
		b.WriteString("Enunciado:\n")
		b.WriteString(description)
		b.WriteString("\n")
	}
	b.WriteString("Resposta do aluno:\n")
	b.WriteString(responseText)
	b.WriteString("\n\nEscreva um feedback construtivo e breve para o aluno.")

	return b.String()
}

// ParseGeneratedContent extracts the title/description pair from the raw
// adapter output. It looks for the TÍTULO/DESCRIÇÃO markers first; when
// either marker is absent it falls back to treating the first non-empty
// line as the title and the rest as the description, and as a last resort
// uses the raw text as the description. Titles are capped at the column
// size and never left empty.
func ParseGeneratedContent(raw string) dto.GeneratedContent {
	var (
		title            string
		descriptionParts []string
		inDescription    bool
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if rest, ok := cutMarker(trimmed, "TÍTULO:", "TITULO:"); ok {
			title = rest
			inDescription = false
			continue
		}

		if rest, ok := cutMarker(trimmed, "DESCRIÇÃO:", "DESCRICAO:"); ok {
			inDescription = true
			if rest != "" {
				descriptionParts = append(descriptionParts, rest)
			}
			continue
		}

		if inDescription && trimmed != "" {
			descriptionParts = append(descriptionParts, trimmed)
		}
	}

	description := strings.Join(descriptionParts, "\n\n")

	if title == "" || description == "" {
		// One or both markers missing: the first non-empty line fills a
		// missing title, the remaining lines a missing description.
		// Marker lines already consumed above are skipped.
		needTitle := title == ""
		var rest []string
		for _, line := range strings.Split(raw, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if _, ok := cutMarker(trimmed, "TÍTULO:", "TITULO:", "DESCRIÇÃO:", "DESCRICAO:"); ok {
				continue
			}
			if needTitle {
				title = trimmed
				needTitle = false
				continue
			}
			rest = append(rest, trimmed)
		}
		if description == "" {
			description = strings.Join(rest, "\n\n")
		}
	}

	// Last resort: hand the instructor the raw output to edit rather
	// than an empty description.
	if description == "" {
		description = strings.TrimSpace(raw)
	}

	if title == "" {
		title = fallbackTitle
	}

	if runes := []rune(title); len(runes) > maxGeneratedTitle {
		title = string(runes[:maxGeneratedTitle])
	}

	return dto.GeneratedContent{Title: title, Description: description}
}

func cutMarker(line string, markers ...string) (string, bool) {
	upper := strings.ToUpper(line)
	for _, marker := range markers {
		if strings.HasPrefix(upper, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}

	return "", false
}
