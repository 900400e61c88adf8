package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentAnalysis(t *testing.T) {
	raw := `{"intent":"billing_issue","urgency":"high","sentiment":"negative","requires_human":true,"key_topics":["refund","invoice"]}`

	analysis, err := parseIntentAnalysis(raw)
	require.NoError(t, err)

	assert.Equal(t, "billing_issue", analysis.Intent)
	assert.Equal(t, "high", analysis.Urgency)
	assert.Equal(t, "negative", analysis.Sentiment)
	assert.True(t, analysis.RequiresHuman)
	assert.Equal(t, []string{"refund", "invoice"}, analysis.KeyTopics)
}

func TestParseIntentAnalysisMarkdownFence(t *testing.T) {
	raw := "```json\n{\"intent\":\"greeting\",\"urgency\":\"low\",\"sentiment\":\"positive\",\"requires_human\":false,\"key_topics\":[]}\n```"

	analysis, err := parseIntentAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "greeting", analysis.Intent)
	assert.Equal(t, "low", analysis.Urgency)
}

func TestParseIntentAnalysisSurroundingProse(t *testing.T) {
	raw := "Here is the analysis:\n{\"intent\":\"question\",\"urgency\":\"medium\",\"sentiment\":\"neutral\",\"requires_human\":false,\"key_topics\":[\"shipping\"]}\nLet me know if you need more."

	analysis, err := parseIntentAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "question", analysis.Intent)
	assert.Equal(t, []string{"shipping"}, analysis.KeyTopics)
}

func TestParseIntentAnalysisMalformed(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		"{\"intent\": unquoted}",
		"",
	} {
		analysis, err := parseIntentAnalysis(raw)
		assert.Error(t, err, "input %q", raw)
		assert.Equal(t, DefaultIntentAnalysis(), analysis)
	}
}

func TestParseIntentAnalysisNullTopics(t *testing.T) {
	analysis, err := parseIntentAnalysis(`{"intent":"other","urgency":"medium","sentiment":"neutral","requires_human":false,"key_topics":null}`)
	require.NoError(t, err)
	assert.NotNil(t, analysis.KeyTopics)
	assert.Empty(t, analysis.KeyTopics)
}

func TestDefaultIntentAnalysis(t *testing.T) {
	def := DefaultIntentAnalysis()
	assert.Equal(t, "other", def.Intent)
	assert.Equal(t, "medium", def.Urgency)
	assert.Equal(t, "neutral", def.Sentiment)
	assert.False(t, def.RequiresHuman)
	assert.Equal(t, []string{}, def.KeyTopics)
}
