package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultVertexModel = "gemini-2.5-flash"

// VertexCompleter calls Gemini on Vertex AI with JSON output.
type VertexCompleter struct {
	client    *genai.Client
	modelName string
}

// NewVertexCompleter creates a Completer based on Vertex AI (Gemini).
func NewVertexCompleter(ctx context.Context, projectID, location, modelName string) (*VertexCompleter, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex analyzer needs a GCP project and location")
	}
	if modelName == "" {
		modelName = defaultVertexModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexCompleter{
		client:    client,
		modelName: modelName,
	}, nil
}

// NewVertexAnalyzer wires a VertexCompleter into an Analyzer.
func NewVertexAnalyzer(ctx context.Context, projectID, location, modelName string) (*Analyzer, error) {
	c, err := NewVertexCompleter(ctx, projectID, location, modelName)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer("vertex:"+c.modelName, c), nil
}

func (v *VertexCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(p.User, genai.RoleUser),
	}

	// classification wants repeatable output
	temp := float32(0)
	outputTokens := int32(1024)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   outputTokens,
		ResponseMIMEType:  "application/json",
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}
