package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"canteenopt/internal/models"
)

// Advisor turns a decision record into a short operator-facing
// explanation using an LLM. It is optional: the server only wires it
// when an API key is configured, and decisions never depend on it.
type Advisor struct {
	llm llms.Model
}

// New creates an advisor backed by the OpenAI chat API
func New(apiKey, model string) (*Advisor, error) {
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing advisor model: %w", err)
	}
	return &Advisor{llm: llm}, nil
}

// Explain produces a plain-language summary of one decision record
func (a *Advisor) Explain(ctx context.Context, rec models.DecisionRecord) (string, error) {
	prompt := fmt.Sprintf(
		"You are the operations assistant of a college canteen. In two or three "+
			"sentences, explain this production recommendation to the kitchen manager.\n"+
			"Item: %s\nDate: %s\nDemand estimate: %.1f units\n"+
			"Learned adjustment: %+.1f units\nRules applied: %s\n"+
			"Final quantity to prepare: %d units\n",
		rec.ItemID,
		rec.Date.Format("2006-01-02"),
		rec.RawEstimate,
		rec.PolicyAdjustment,
		strings.Join(rec.RulesFired, ", "),
		rec.PredictedQuantity,
	)

	out, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generating explanation: %w", err)
	}
	return strings.TrimSpace(out), nil
}
