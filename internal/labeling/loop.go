package labeling

import (
	"context"
	"fmt"

	"github.com/jward/lucien/internal/config"
	"github.com/jward/lucien/internal/llm"
)

// Client is the subset of *llm.Client the escalation loop needs, so tests
// can substitute a fake without standing up an HTTP server.
type Client interface {
	Label(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}

// financialDocTypes are the doc_types for which a missing date or issuer
// forces escalation regardless of the model's own confidence score.
var financialDocTypes = map[string]bool{
	"financial": true,
	"tax":       true,
	"medical":   true,
	"insurance": true,
	"legal":     true,
}

// Result is one file's final label plus which model produced it.
type Result struct {
	Label     llm.LabelOutput
	ModelName string
	Escalated bool
}

// Label runs the escalation loop for one file's context: it calls the
// default model, and if the result trips any escalation condition,
// re-invokes with the escalation model and returns that result instead.
func Label(ctx context.Context, client Client, llmCfg config.LLMConfig, fileCtx llm.Context) (Result, error) {
	userPrompt := llm.BuildUserPrompt(fileCtx)

	r0, err := callModel(ctx, client, llmCfg.DefaultModel, fileCtx.DocTypes, userPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("labeling: default model: %w", err)
	}

	if !needsEscalation(r0, llmCfg) {
		return Result{Label: r0, ModelName: llmCfg.DefaultModel, Escalated: false}, nil
	}

	r1, err := callModel(ctx, client, llmCfg.EscalationModel, fileCtx.DocTypes, userPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("labeling: escalation model: %w", err)
	}
	return Result{Label: r1, ModelName: llmCfg.EscalationModel, Escalated: true}, nil
}

func callModel(ctx context.Context, client Client, model string, docTypes []string, userPrompt string) (llm.LabelOutput, error) {
	content, err := client.Label(ctx, model, llm.SystemPrompt(), userPrompt)
	if err != nil {
		return llm.LabelOutput{}, err
	}
	out, err := llm.ParseLabel(content)
	if err != nil {
		return llm.LabelOutput{}, err
	}
	if err := llm.ValidateLabel(out); err != nil {
		return llm.LabelOutput{}, err
	}
	return llm.ValidateVocabulary(out, docTypes), nil
}

// needsEscalation applies the three-part escalation predicate: doc_type in
// the configured sensitive set, confidence below the configured threshold,
// or a financial/tax/medical/insurance/legal doc_type missing a date or
// issuer.
func needsEscalation(r llm.LabelOutput, cfg config.LLMConfig) bool {
	for _, sensitive := range cfg.EscalationDocTypes {
		if r.DocType == sensitive {
			return true
		}
	}
	if r.Confidence < cfg.EscalationThreshold {
		return true
	}
	if financialDocTypes[r.DocType] && (r.Date == nil || r.Issuer == nil) {
		return true
	}
	return false
}
