package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
)

type stubGenerator struct {
	output string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func newGenerationFixture(generator *stubGenerator) (*memorySubmissionRepo, GenerationService) {
	submissions := &memorySubmissionRepo{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGenerationService(generator, submissions, validate, time.Second, testLogger())
	return submissions, svc
}

func TestParseGeneratedContentMarkers(t *testing.T) {
	content := ParseGeneratedContent("TÍTULO: Fotossíntese\n\nDESCRIÇÃO:\nExplique o processo.\nCite exemplos.")
	require.Equal(t, "Fotossíntese", content.Title)
	require.Equal(t, "Explique o processo.\n\nCite exemplos.", content.Description)
}

func TestParseGeneratedContentInlineDescription(t *testing.T) {
	content := ParseGeneratedContent("TÍTULO: Frações\nDESCRIÇÃO: Resolva os exercícios da página 10.")
	require.Equal(t, "Frações", content.Title)
	require.Equal(t, "Resolva os exercícios da página 10.", content.Description)
}

func TestParseGeneratedContentTitleMarkerOnly(t *testing.T) {
	content := ParseGeneratedContent("TÍTULO: Ecossistemas\nDescreva um bioma brasileiro.\nCompare-o com outro bioma.")
	require.Equal(t, "Ecossistemas", content.Title)
	require.Equal(t, "Descreva um bioma brasileiro.\n\nCompare-o com outro bioma.", content.Description)
}

func TestParseGeneratedContentDescriptionMarkerOnly(t *testing.T) {
	content := ParseGeneratedContent("DESCRIÇÃO:\nLeia o capítulo 3 e resuma os pontos principais.")
	require.Equal(t, "Leia o capítulo 3 e resuma os pontos principais.", content.Description)
	require.NotEmpty(t, content.Title)
}

func TestParseGeneratedContentRawTextDescription(t *testing.T) {
	content := ParseGeneratedContent("Pesquise sobre o ciclo da água.")
	require.Equal(t, "Pesquise sobre o ciclo da água.", content.Title)
	require.Equal(t, "Pesquise sobre o ciclo da água.", content.Description)
}

func TestParseGeneratedContentFallback(t *testing.T) {
	content := ParseGeneratedContent("Revolução Industrial\n\nPesquise as causas.\nApresente em sala.")
	require.Equal(t, "Revolução Industrial", content.Title)
	require.Equal(t, "Pesquise as causas.\n\nApresente em sala.", content.Description)
}

func TestParseGeneratedContentPlaceholderTitle(t *testing.T) {
	content := ParseGeneratedContent("")
	require.Equal(t, "Atividade Gerada", content.Title)
	require.Empty(t, content.Description)
}

func TestParseGeneratedContentTruncatesTitle(t *testing.T) {
	long := strings.Repeat("á", 250)
	content := ParseGeneratedContent("TÍTULO: " + long + "\nDESCRIÇÃO:\nx")
	require.Equal(t, 200, len([]rune(content.Title)))
}

func TestBuildAssignmentPromptOmitsEmptyHints(t *testing.T) {
	prompt := BuildAssignmentPrompt(dto.GenerateRequest{Prompt: "sistema solar"})
	require.Contains(t, prompt, "sistema solar")
	require.NotContains(t, prompt, "Disciplina")
	require.NotContains(t, prompt, "dificuldade")
	require.Contains(t, prompt, "TÍTULO:")
	require.Contains(t, prompt, "DESCRIÇÃO:")

	full := BuildAssignmentPrompt(dto.GenerateRequest{
		Prompt:     "sistema solar",
		Subject:    "Ciências",
		Difficulty: "médio",
		Type:       "pesquisa",
	})
	require.Contains(t, full, "Disciplina: Ciências")
	require.Contains(t, full, "Nível de dificuldade: médio")
	require.Contains(t, full, "Tipo de atividade: pesquisa")
}

func TestGenerateAssignmentWrapsAdapterFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream down")}
	_, svc := newGenerationFixture(generator)

	_, err := svc.GenerateAssignment(context.Background(), dto.GenerateRequest{Prompt: "tema"})
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateAssignmentParsesOutput(t *testing.T) {
	generator := &stubGenerator{output: "TÍTULO: Plano de aula\nDESCRIÇÃO:\nMonte um plano."}
	_, svc := newGenerationFixture(generator)

	content, err := svc.GenerateAssignment(context.Background(), dto.GenerateRequest{Prompt: "planejamento"})
	require.NoError(t, err)
	require.Equal(t, "Plano de aula", content.Title)
	require.Equal(t, "Monte um plano.", content.Description)
	require.Contains(t, generator.prompt, "planejamento")
}

func TestGenerateFeedbackRequiresOwnership(t *testing.T) {
	generator := &stubGenerator{output: "Bom trabalho."}
	submissions, svc := newGenerationFixture(generator)
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		Assignment:   models.Assignment{ID: 1, InstructorID: 1, Title: "Prova"},
	}}

	feedback, err := svc.GenerateFeedback(context.Background(), 1, dto.GenerateFeedbackRequest{SubmissionID: 1})
	require.NoError(t, err)
	require.Equal(t, "Bom trabalho.", feedback.Feedback)

	_, err = svc.GenerateFeedback(context.Background(), 9, dto.GenerateFeedbackRequest{SubmissionID: 1})
	require.ErrorIs(t, err, ErrForbidden)
}
