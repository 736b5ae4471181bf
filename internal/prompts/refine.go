package prompts

import (
	"context"
	"fmt"
	"strings"
)

const pluralPrompt = `You are given a German occupation in its genitive singular form and a plural produced by simple suffix rules.
Answer with the correct German dative plural of the occupation as used in "einer Gruppe von ...".
Answer with the single word only, no punctuation and no explanation.

Singular: %s
Rule-based plural: %s`

// TextGenerator turns a prompt into a text completion
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMRefiner corrects German plurals by asking a language model
type LLMRefiner struct {
	LLM TextGenerator
}

// RefineGermanPlural returns the model's plural for singular. The rule-based
// plural is returned with an error when the answer is not a single word.
func (r LLMRefiner) RefineGermanPlural(ctx context.Context, singular, plural string) (string, error) {
	answer, err := r.LLM.Generate(ctx, fmt.Sprintf(pluralPrompt, singular, plural))
	if err != nil {
		return plural, err
	}

	answer = strings.Trim(strings.TrimSpace(answer), ".\"'`")
	if answer == "" || strings.ContainsAny(answer, " \n\t") {
		return plural, fmt.Errorf("unexpected answer from language model: %q", answer)
	}
	return answer, nil
}
