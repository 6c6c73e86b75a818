package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	maxOpenAIAttempts  = 3
)

var verdictSchema = generateSchema[verdict]()

// OpenAICompleter calls the Responses API with a strict JSON schema.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	// waits between retries of rate-limited or 5xx calls
	backoff []time.Duration
}

func NewOpenAICompleter(apiKey, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai analyzer needs an API key")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAICompleter{
		client:  &client,
		model:   model,
		backoff: []time.Duration{2 * time.Second, 5 * time.Second},
	}, nil
}

// NewOpenAIAnalyzer wires an OpenAICompleter into an Analyzer.
func NewOpenAIAnalyzer(apiKey, model string) (*Analyzer, error) {
	c, err := NewOpenAICompleter(apiKey, model)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer("openai:"+c.model, c), nil
}

func (o *OpenAICompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(1024),
		Instructions:    openai.String(p.System),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(p.User, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "JournalAnalysis",
					Schema:      verdictSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Emotional analysis of one journal entry"),
					Type:        "json_schema",
				},
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxOpenAIAttempts; attempt++ {
		resp, err := o.client.Responses.New(ctx, params)
		if err == nil {
			return resp.OutputText(), nil
		}
		lastErr = err
		if !isRetryable(err) || attempt >= len(o.backoff) {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(o.backoff[attempt]):
		}
	}
	return "", fmt.Errorf("openai responses: %w", lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "too many requests", "500", "502", "503", "server_error"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureOpenAICompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureOpenAICompliance makes every object strict: no extra properties and
// all properties required.
func ensureOpenAICompliance(schema map[string]interface{}) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]interface{}); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				sort.Strings(required)
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]interface{}); ok {
				ensureOpenAICompliance(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureOpenAICompliance(items)
	}
}
