package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sreevatsan/storysmith/internal/types"
)

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
	Strict bool               `json:"strict"`
}

// ChatStructured invokes the model once asking for output conforming to the
// given schema, validates the response against it and decodes into out.
// A response that fails validation or decoding is reported as
// types.ErrSchemaMismatch; there is no implicit coercion.
func (c *Client) ChatStructured(ctx context.Context, history []types.Message, name string, schema *jsonschema.Schema, out any) error {
	req := c.newRequest(history)
	req.ResponseFormat = &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchemaSpec{
			Name:   name,
			Schema: schema,
			Strict: true,
		},
	}

	var chatResp chatResponse
	if err := c.post(ctx, req, &chatResp); err != nil {
		return err
	}
	if len(chatResp.Choices) == 0 {
		return fmt.Errorf("no response from model")
	}

	content := chatResp.Choices[0].Message.Content
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", types.ErrSchemaMismatch, err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve schema %q: %w", name, err)
	}
	if err := resolved.Validate(raw); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaMismatch, err)
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSchemaMismatch, err)
	}
	return nil
}
