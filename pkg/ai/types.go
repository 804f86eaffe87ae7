package ai

import "context"

// Generator describes a model capable of producing free text from a prompt.
// The provider gives no structural guarantees about the response; callers
// own any parsing of the returned text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
