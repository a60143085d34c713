// Package ai connects the flow layer to the Gemini API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
)

const (
	defaultModel = "gemini-2.0-flash"
	jsonMIMEType = "application/json"
)

// Gemini generates flow output with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Init creates the Gemini generator. A blank apiKey yields a nil
// generator and a MisconfiguredMissingCredential readiness, which is
// logged at error level so the problem shows before any flow runs.
func Init(ctx context.Context, apiKey, model string, logger *zap.Logger) (flow.Generator, flow.Readiness) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = defaultModel
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		r := flow.Readiness{
			Status: flow.MisconfiguredMissingCredential,
			Detail: "no Gemini API key; set GEMINI_API_KEY or run `noteflow login --api-key`",
		}
		logger.Error("AI generator not configured", zap.String("detail", r.Detail))
		return nil, r
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		r := flow.Readiness{
			Status: flow.MisconfiguredMissingCredential,
			Detail: fmt.Sprintf("creating Gemini client: %v", err),
		}
		logger.Error("AI generator not configured", zap.String("detail", r.Detail))
		return nil, r
	}

	logger.Debug("AI generator ready", zap.String("model", model))
	return &Gemini{client: client, model: model, logger: logger}, flow.Readiness{Status: flow.Ready}
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string {
	return g.model
}

// Generate sends req as a single GenerateContent call and returns the JSON
// text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req flow.Request) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, buildContents(req), buildConfig(req))
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in Gemini response")
	}
	if reason := resp.Candidates[0].FinishReason; reason != "" && reason != genai.FinishReasonStop {
		return "", fmt.Errorf("generation stopped early: %s", reason)
	}

	g.logger.Debug("Gemini response",
		zap.String("flow", req.Flow),
		zap.String("model", g.model),
		zap.Int("candidates", len(resp.Candidates)),
	)

	return stripFence(resp.Text()), nil
}

// buildContents places inline media before the prompt text in a single
// user turn.
func buildContents(req flow.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Media)+1)
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Text))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func buildConfig(req flow.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: jsonMIMEType}
	if req.Schema != nil {
		cfg.ResponseSchema = req.Schema
	}
	return cfg
}

// stripFence removes a Markdown code fence around the response, which some
// models add even in JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
