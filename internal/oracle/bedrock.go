// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/petar-djukic/go-localizer/internal/budget"
	"github.com/petar-djukic/go-localizer/pkg/types"
)

const (
	defaultTimeout   = 300 * time.Second
	maxRetryAttempts = 3
	baseRetryDelay   = 1 * time.Second
)

// ClientConfig configures the Bedrock oracle.
type ClientConfig struct {
	ModelID string        // Bedrock model ID (required)
	Region  string        // AWS region (required)
	Profile string        // AWS credential profile (optional)
	Timeout time.Duration // Per-request timeout (default 300s)
}

// BedrockAPI abstracts the Bedrock Converse call for testing.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client is the Bedrock-backed Oracle. The pipeline consumes whole ranked
// responses, so the non-streaming Converse API is used; N samples fan out as
// N sequential calls since Converse yields one candidate per request.
type Client struct {
	api     BedrockAPI
	modelID string
	timeout time.Duration
	count   budget.CountFunc
	usage   types.TokenUsage // Cumulative usage across calls
}

// NewClient creates a Bedrock oracle from the given configuration using the
// standard AWS credential chain.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("%w: model ID is required", ErrOracleFailure)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrOracleFailure)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrOracleFailure, err)
	}

	return NewClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewClientWithAPI creates a client over a pre-configured API implementation.
// Used for testing with fakes.
func NewClientWithAPI(api BedrockAPI, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		api:     api,
		modelID: cfg.ModelID,
		timeout: timeout,
		count:   budget.Estimator(),
	}
}

// Codegen sends the prompt and returns opts.NumSamples independent
// generations. Each underlying call retries throttling errors with
// exponential backoff; any other failure aborts the whole batch.
func (c *Client) Codegen(ctx context.Context, prompt string, opts Options) ([]Generation, error) {
	opts.defaults()

	gens := make([]Generation, 0, opts.NumSamples)
	for i := 0; i < opts.NumSamples; i++ {
		gen, err := c.converseWithRetry(ctx, prompt, opts)
		if err != nil {
			return nil, err
		}
		c.usage = c.usage.Add(gen.Usage)
		gens = append(gens, gen)
	}
	return gens, nil
}

// CountTokens approximates the token length of a text. Bedrock exposes no
// counting endpoint, so the byte estimator stands in.
func (c *Client) CountTokens(text string) int {
	return c.count(text)
}

// CumulativeUsage returns the total token usage across all calls.
func (c *Client) CumulativeUsage() types.TokenUsage {
	return c.usage
}

// converseWithRetry calls Converse with exponential backoff for throttling.
func (c *Client) converseWithRetry(ctx context.Context, prompt string, opts Options) (Generation, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Generation{}, fmt.Errorf("%w: context cancelled during retry: %v", ErrOracleFailure, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)

		input := &bedrockruntime.ConverseInput{
			ModelId: aws.String(c.modelID),
			Messages: []brtypes.Message{
				{
					Role: brtypes.ConversationRoleUser,
					Content: []brtypes.ContentBlock{
						&brtypes.ContentBlockMemberText{Value: prompt},
					},
				},
			},
			InferenceConfig: &brtypes.InferenceConfiguration{
				MaxTokens:   aws.Int32(int32(opts.MaxTokens)),
				Temperature: aws.Float32(opts.Temperature),
			},
		}

		output, err := c.api.Converse(callCtx, input)
		cancel()
		if err != nil {
			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}
			return Generation{}, c.classifyError(err)
		}

		return generationFromOutput(output), nil
	}

	return Generation{}, fmt.Errorf("%w: rate limited after %d retries: %v", ErrOracleFailure, maxRetryAttempts, lastErr)
}

// generationFromOutput flattens the Converse response into text plus usage.
func generationFromOutput(out *bedrockruntime.ConverseOutput) Generation {
	var gen Generation

	if msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage); ok {
		var text strings.Builder
		for _, block := range msg.Value.Content {
			if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
				text.WriteString(t.Value)
			}
		}
		gen.Response = text.String()
	}

	if out.Usage != nil {
		if out.Usage.InputTokens != nil {
			gen.Usage.PromptTokens = int(*out.Usage.InputTokens)
		}
		if out.Usage.OutputTokens != nil {
			gen.Usage.CompletionTokens = int(*out.Usage.OutputTokens)
		}
	}

	return gen
}

// classifyError wraps Bedrock errors into ErrOracleFailure with descriptive
// messages.
func (c *Client) classifyError(err error) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrOracleFailure, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrOracleFailure, c.modelID)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrOracleFailure, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrOracleFailure, err)
}
