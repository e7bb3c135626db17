package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const maxContextChars = 8000

const systemPromptTemplate = `You are a document classification assistant. Given the contents of one
archived file, select doc_type strictly from the provided list, preferring
the most specific applicable type. Produce a canonical filename of the form
YYYY-MM-DD-Category-Issuer-Description, using hyphens between fields and
underscores within a field. Scope any family-member name suffix only to
documents specific to one person, and only to names in the provided list.
Assign tags from the provided list. Score confidence in [0,1] using:
1.0 if doc_type, date, and issuer are all unambiguous from the text;
0.5-0.9 if doc_type is clear but date or issuer is inferred or missing;
below 0.5 if the document's purpose itself is unclear.
Respond with a bare JSON object matching the given schema. Do not wrap the
response in prose or markdown.`

const userPromptTemplate = `Filename: %s
Parent folders: %s
Size: %d bytes
MIME: %s

Document types: %s
Tags: %s
Taxonomy: %s
Family members: %s

Extracted text:
%s

Respond with a JSON object: {"doc_type": "...", "title": "...",
"canonical_filename": "...", "suggested_tags": [...],
"target_group_path": "...", "date": "YYYY-MM-DD" or null,
"issuer": "..." or null, "source": "..." or null,
"confidence": 0.0-1.0, "why": "..."}`

// SystemPrompt returns the classification system prompt sent with every
// labeling call.
func SystemPrompt() string {
	return systemPromptTemplate
}

// BuildUserPrompt renders the user-turn prompt for one file, truncating its
// extracted text to maxContextChars (keeping 70% head, 30% tail) as the
// labeling loop's input text may already exceed the sidecar's own
// truncation bound.
func BuildUserPrompt(ctx Context) string {
	text := ctx.Text
	if !ctx.HasText {
		text = "(no extractable text)"
	} else if len(text) > maxContextChars {
		head := int(float64(maxContextChars) * 0.7)
		text = text[:head] + "[... middle section omitted ...]" + text[len(text)-(maxContextChars-head):]
	}

	return fmt.Sprintf(userPromptTemplate,
		ctx.Filename,
		strings.Join(ctx.ParentFolders, "/"),
		ctx.Size,
		ctx.MimeType,
		strings.Join(ctx.DocTypes, ", "),
		strings.Join(ctx.Tags, ", "),
		strings.Join(ctx.TopLevel, ", "),
		strings.Join(ctx.FamilyMembers, ", "),
		text,
	)
}

// structuralUserPrompt renders the user prompt with placeholder values
// substituted for per-file content, so the prompt-version hash reflects
// template changes but not per-file data.
func structuralUserPrompt(ctx Context) string {
	return fmt.Sprintf(userPromptTemplate,
		"<filename>", "<parents>", 0, "<mime>",
		strings.Join(ctx.DocTypes, ", "),
		strings.Join(ctx.Tags, ", "),
		strings.Join(ctx.TopLevel, ", "),
		strings.Join(ctx.FamilyMembers, ", "),
		"<text>",
	)
}

// PromptVersion hashes the system prompt plus the structural (placeholder-
// substituted) user prompt to a 16-hex-char fingerprint, so a label row
// records exactly which prompt produced it without storing the whole
// prompt text.
func PromptVersion(ctx Context) string {
	h := sha256.New()
	h.Write([]byte(systemPromptTemplate))
	h.Write([]byte(structuralUserPrompt(ctx)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
