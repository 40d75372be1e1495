package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini extracts form field values from a photo using the Gemini API.
// It satisfies schedule.Extractor.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// ExtractFields sends the image together with the field schema and decodes
// the model's JSON answer into a field→value mapping. Values the model
// reports as null come back as nil entries; non-string values are dropped.
func (g *Gemini) ExtractFields(ctx context.Context, image []byte, mimeType string, schema string) (map[string]*string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := fmt.Sprintf(
		"Lies die Felder eines Schichtplan-Formulars aus dem Foto. Antworte ausschließlich mit einem JSON-Objekt nach diesem Schema, unbekannte Werte als null:\n%s",
		schema,
	)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini extraction failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode extraction result: %w", err)
	}

	extracted := make(map[string]*string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			extracted[name] = nil
		case string:
			s := v
			extracted[name] = &s
		}
	}
	return extracted, nil
}
