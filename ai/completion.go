package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"customer-support-chat/backend/pkg/logger"
	"customer-support-chat/backend/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
)

// Fallback replies. The provider is never allowed to fail a chat request:
// an empty-but-successful completion and a transport/provider failure each
// map to a fixed apology.
const (
	FallbackEmptyReply = "I apologize, but I'm having trouble processing your request right now. Please try again or contact our support team for assistance."
	FallbackErrorReply = "I'm experiencing technical difficulties at the moment. Please try again later or contact our support team for immediate assistance."
)

// SystemPrompt is the fixed instruction block prepended to every
// conversational context.
const SystemPrompt = `You are a helpful customer support assistant. Your role is to:

1. Provide friendly, professional, and helpful responses
2. Help customers with their questions and issues
3. Escalate complex issues when necessary
4. Maintain a positive and empathetic tone
5. Ask clarifying questions when needed
6. Provide step-by-step solutions when appropriate

Guidelines:
- Always be polite and professional
- If you don't know something, admit it and offer to escalate
- Keep responses concise but comprehensive
- Use markdown formatting for better readability
- If a customer seems frustrated, acknowledge their feelings
- Offer multiple solutions when possible

Common topics you can help with:
- Account issues
- Billing questions
- Technical support
- Product information
- Order status
- Returns and refunds
- Mental health

If a customer needs human assistance, let them know you can create a support ticket for them.`

const intentPromptTemplate = `Analyze this customer support message and return a JSON response with:
1. intent: (greeting, question, complaint, compliment, request_human, technical_issue, billing_issue, account_issue, other)
2. urgency: (low, medium, high, urgent)
3. sentiment: (positive, neutral, negative)
4. requires_human: (true/false)
5. key_topics: (array of main topics mentioned)

Message: %q

Respond only with valid JSON.`

// ErrNoAPIKey is returned by NewService when no credential is configured.
// Callers treat it as "feature disabled" and run in degraded mode rather
// than failing startup.
var ErrNoAPIKey = errors.New("completion API key not configured")

// Config holds completion provider settings. BaseURL allows pointing at any
// OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Service wraps the completion provider behind the two operations the chat
// flow needs. Both operations absorb provider failures into canned results
// and never return an error to the caller. One Service instance is built at
// startup and reused across requests.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

// NewService builds a completion client. It fails fast with ErrNoAPIKey when
// no credential is present so the caller can flag the capability as disabled.
func NewService(cfg Config, log *logger.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := resilience.NewCircuitBreaker(
		resilience.DefaultCircuitBreakerConfig("completion-provider"), log)

	return &Service{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
		breaker: breaker,
		log:     log,
	}, nil
}

// GenerateReply submits the assembled conversational context and returns the
// trimmed reply text. Provider failures and empty completions both yield a
// fixed fallback; the single attempt is never retried.
func (s *Service) GenerateReply(ctx context.Context, prompt string) string {
	reply, err := s.complete(ctx, "generate_reply", prompt)
	if err != nil {
		s.log.LogError(err, "completion provider failed, using fallback reply")
		return FallbackErrorReply
	}
	if reply == "" {
		completionFailures.WithLabelValues("generate_reply", "empty").Inc()
		s.log.Warn("completion provider returned empty reply")
		return FallbackEmptyReply
	}
	return reply
}

// ClassifyIntent asks the provider for a strict-JSON intent analysis of the
// raw user message. Any provider failure or undecodable output yields the
// documented default analysis.
func (s *Service) ClassifyIntent(ctx context.Context, message string) IntentAnalysis {
	raw, err := s.complete(ctx, "classify_intent", fmt.Sprintf(intentPromptTemplate, message))
	if err != nil {
		s.log.LogError(err, "intent classification failed, using default analysis")
		return DefaultIntentAnalysis()
	}

	analysis, err := parseIntentAnalysis(raw)
	if err != nil {
		completionFailures.WithLabelValues("classify_intent", "parse").Inc()
		s.log.Warn("unparseable intent analysis, using default", "error", err.Error())
		return DefaultIntentAnalysis()
	}
	return analysis
}

func (s *Service) complete(ctx context.Context, operation, prompt string) (string, error) {
	completionRequests.WithLabelValues(operation).Inc()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var content string
	err := s.breaker.Execute(func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) > 0 {
			content = strings.TrimSpace(resp.Choices[0].Message.Content)
		}
		return nil
	})

	completionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		completionFailures.WithLabelValues(operation, "provider").Inc()
		return "", err
	}
	return content, nil
}
