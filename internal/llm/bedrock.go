package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockClient implements Provider for Amazon Bedrock
type BedrockClient struct {
	Region  string
	Model   string
	Timeout time.Duration

	svc modelInvoker
}

// modelInvoker is the part of the bedrockruntime client used here
type modelInvoker interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// NewBedrock initializes a Bedrock client using default AWS config chain
func NewBedrock(region, model string, timeout time.Duration) (*BedrockClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("bedrock model is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cfg aws.Config
	var err error
	if strings.TrimSpace(region) != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	} else {
		// Allow region to be resolved from AWS profile/env
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" && strings.TrimSpace(region) == "" {
		return nil, fmt.Errorf("AWS region not resolved. Set llm.region, AWS_REGION or define region in the selected AWS profile")
	}
	client := bedrockruntime.NewFromConfig(cfg)
	return &BedrockClient{Region: region, Model: model, Timeout: timeout, svc: client}, nil
}

// Name returns provider name
func (b *BedrockClient) Name() string { return "bedrock" }

// Generate sends a prompt to Bedrock and returns the generated text. Only
// Anthropic models are supported.
func (b *BedrockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !isAnthropicModel(b.Model) {
		return "", fmt.Errorf("unsupported Bedrock model family for %q", b.Model)
	}
	modelID := normalizeModelID(b.Model)
	body, err := json.Marshal(newAnthropicRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	out, err := b.svc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", annotateBedrockError(fmt.Errorf("bedrock invoke error: %w", err), modelID)
	}
	return parseAnthropicResponse(out.Body)
}

// Summaries are three bullets; a small budget keeps replies short
const (
	anthropicVersion   = "bedrock-2023-05-31"
	summaryMaxTokens   = 512
	summaryTemperature = 0.2
)

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
}

func newAnthropicRequest(prompt string) anthropicRequest {
	return anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        summaryMaxTokens,
		Temperature:      summaryTemperature,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicContent{{Type: "text", Text: prompt}},
		}},
	}
}

// parseAnthropicResponse returns the first non-empty text block
func parseAnthropicResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode Anthropic response: %w", err)
	}
	for _, c := range resp.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			return strings.TrimSpace(c.Text), nil
		}
	}
	return "", fmt.Errorf("empty response from Bedrock Anthropic model (stop reason %q)", resp.StopReason)
}

// normalizeModelID appends the :0 revision to bare model ids; ARNs and
// inference profiles are left alone
func normalizeModelID(model string) string {
	modelID := strings.TrimSpace(model)
	lower := strings.ToLower(modelID)
	if strings.HasPrefix(lower, "arn:") || strings.Contains(lower, "inference-profile/") {
		return modelID
	}
	if !strings.Contains(modelID, ":") {
		modelID += ":0"
	}
	return modelID
}

// isAnthropicModel accepts bare ids, regional ids and ARNs of Anthropic models
func isAnthropicModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "anthropic.")
}

// annotateBedrockError adds common hints for Bedrock model ID issues
func annotateBedrockError(err error, modelID string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "validationexception") && strings.Contains(msg, "throughput isn't supported") {
		return fmt.Errorf("%v\nHint: This model may require an inference profile. Try setting llm_model to the profile ID/ARN for %q, or ensure the ID includes region/vendor and revision (e.g., us.anthropic...:0)", err, modelID)
	}
	if strings.Contains(msg, "provided model identifier is invalid") {
		return fmt.Errorf("%v\nHint: Verify the exact Bedrock ModelId or use the inference profile ID. Regional prefixes (e.g., us.) and revision suffix (:0) may be required", err)
	}
	return err
}
