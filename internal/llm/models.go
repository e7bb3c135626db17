// Package llm is the chat-completions client against a local
// OpenAI-compatible endpoint: request/response wire types, retry-without-
// backoff on transient failure, markdown-fence-tolerant response parsing,
// and out-of-vocabulary doc_type correction.
package llm

import "fmt"

// chatMessage is one OpenAI-compatible chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// LabelOutput is the structured response the system prompt instructs the
// model to produce for one document.
type LabelOutput struct {
	DocType       string   `json:"doc_type"`
	Title         string   `json:"title"`
	CanonicalName string   `json:"canonical_filename"`
	SuggestedTags []string `json:"suggested_tags"`
	TargetGroup   string   `json:"target_group_path"`
	Date          *string  `json:"date"`
	Issuer        *string  `json:"issuer"`
	Source        *string  `json:"source"`
	Confidence    float64  `json:"confidence"`
	Why           string   `json:"why"`
}

// ValidateLabel enforces the schema a LabelOutput must satisfy before it can
// be trusted: confidence in [0, 1], and every field the model is required to
// produce (doc_type, title, canonical_filename, target_group_path, why)
// non-empty. suggested_tags, date, issuer, and source are all optional and
// are not checked.
func ValidateLabel(out LabelOutput) error {
	if out.Confidence < 0 || out.Confidence > 1 {
		return fmt.Errorf("llm: confidence %.4f out of range [0, 1]", out.Confidence)
	}
	if out.DocType == "" {
		return fmt.Errorf("llm: doc_type is required")
	}
	if out.Title == "" {
		return fmt.Errorf("llm: title is required")
	}
	if out.CanonicalName == "" {
		return fmt.Errorf("llm: canonical_filename is required")
	}
	if out.TargetGroup == "" {
		return fmt.Errorf("llm: target_group_path is required")
	}
	if out.Why == "" {
		return fmt.Errorf("llm: why is required")
	}
	return nil
}

// Context is everything the labeling loop assembles for one file before
// calling the model.
type Context struct {
	Filename      string
	ParentFolders []string
	Text          string
	HasText       bool
	Size          int64
	MimeType      string
	Mtime         int64

	TopLevel      []string
	DocTypes      []string
	Tags          []string
	FamilyMembers []string
}
