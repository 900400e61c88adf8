package ai

import (
	"encoding/json"
	"strings"
)

// IntentAnalysis is the per-message classification produced alongside a
// reply. It is transient: used to decide escalation signaling for the
// current response and never persisted.
type IntentAnalysis struct {
	Intent        string   `json:"intent"`
	Urgency       string   `json:"urgency"`
	Sentiment     string   `json:"sentiment"`
	RequiresHuman bool     `json:"requires_human"`
	KeyTopics     []string `json:"key_topics"`
}

// DefaultIntentAnalysis is the documented fallback used whenever the
// provider output cannot be decoded into the expected shape. It is always
// returned whole, never partially populated.
func DefaultIntentAnalysis() IntentAnalysis {
	return IntentAnalysis{
		Intent:        "other",
		Urgency:       "medium",
		Sentiment:     "neutral",
		RequiresHuman: false,
		KeyTopics:     []string{},
	}
}

// parseIntentAnalysis decodes the model's analysis output. Models routinely
// wrap JSON in markdown fences or surrounding prose, so the decode works on
// the outermost brace-delimited object.
func parseIntentAnalysis(raw string) (IntentAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	analysis := DefaultIntentAnalysis()
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return DefaultIntentAnalysis(), err
	}
	if analysis.KeyTopics == nil {
		analysis.KeyTopics = []string{}
	}
	return analysis, nil
}
