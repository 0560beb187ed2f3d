package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
	// DefaultMaxAdviceTokens bounds the length of generated advice
	DefaultMaxAdviceTokens = 200

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"

	systemPrompt = "Eres un asistente de bienestar emocional dentro de una app de diario de ánimo. " +
		"Das consejos breves, cálidos y prácticos en español. No diagnosticas ni recetas medicamentos. " +
		"Si la persona parece estar en riesgo, recomiendas buscar ayuda profesional o a alguien de confianza."
)

// OpenAIConfig configures an OpenAI-compatible advisor
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	HTTPClient *http.Client
	DebugMode  bool
}

// OpenAIAdvisor implements Advisor using an OpenAI-compatible chat completions API
type OpenAIAdvisor struct {
	client    openai.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
	debugMode bool

	now          func() time.Time
	mu           sync.Mutex
	blockedUntil time.Time
}

// NewOpenAIAdvisor creates a new OpenAI advisor
func NewOpenAIAdvisor(cfg OpenAIConfig, logger *zap.Logger) *OpenAIAdvisor {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxAdviceTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(cfg.HTTPClient),
		// Recommendation requests fall back to catalog advice instead of waiting on retries
		option.WithMaxRetries(0),
	)

	return &OpenAIAdvisor{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
		debugMode: cfg.DebugMode,
		now:       time.Now,
	}
}

// PersonalizedAdvice asks the model for advice tailored to the category and history summary
func (a *OpenAIAdvisor) PersonalizedAdvice(ctx context.Context, category, summary string) (string, error) {
	if until := a.cooldownUntil(); a.now().Before(until) {
		return "", fmt.Errorf("%w until %s", ErrCoolingDown, until.Format(time.RFC3339))
	}

	prompt := buildAdvicePrompt(category, summary)
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(a.maxTokens),
	}

	if a.debugMode {
		a.logger.Debug("llm_api_request",
			zap.String("operation", "personalized_advice"),
			zap.String("model", a.model),
			zap.String("category", category),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, false)),
		)
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if d := cooldownFor(err); d > 0 {
			a.backOff(d)
			a.logger.Warn("llm_api_backoff",
				zap.String("operation", "personalized_advice"),
				zap.Duration("cooldown", d),
				zap.Bool("quota", IsQuotaError(err)),
			)
		}
		if a.debugMode {
			a.logger.Debug("llm_api_error",
				zap.String("operation", "personalized_advice"),
				zap.String("model", a.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyAdvice
	}

	if a.debugMode {
		a.logger.Debug("llm_api_response",
			zap.String("operation", "personalized_advice"),
			zap.String("model", a.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

func (a *OpenAIAdvisor) cooldownUntil() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blockedUntil
}

func (a *OpenAIAdvisor) backOff(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if until := a.now().Add(d); until.After(a.blockedUntil) {
		a.blockedUntil = until
	}
}

// buildAdvicePrompt renders the user message sent for a category
func buildAdvicePrompt(category, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Emoción predominante: %s.\n", category)
	if summary = strings.TrimSpace(summary); summary != "" {
		fmt.Fprintf(&b, "Resumen reciente del diario: %s\n", summary)
	}
	b.WriteString("Escribe un solo consejo de dos o tres frases que la persona pueda aplicar hoy. Responde solo con el consejo.")
	return b.String()
}

// RegisterOpenAI registers the OpenAI provider. Recognised keys are
// api_key, base_url, model and debug.
func RegisterOpenAI(registry *ProviderRegistry, logger *zap.Logger) {
	registry.Register("openai", func(config map[string]string) (Advisor, error) {
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
		return NewOpenAIAdvisor(OpenAIConfig{
			APIKey:    apiKey,
			BaseURL:   config["base_url"],
			Model:     config["model"],
			DebugMode: config["debug"] == "true",
		}, logger), nil
	})
}
