package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"globetrotter-service/internal/domain"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = goopenai.GPT4o
	batchSize    = 10

	systemPrompt = "You are a travel expert who provides accurate and interesting information about global destinations."
)

// Generator asks a chat-completion model for new catalog destinations.
type Generator struct {
	client *goopenai.Client
	model  string
}

// NewGenerator builds a generator. baseURL is optional and points the client
// at an OpenAI-compatible endpoint.
func NewGenerator(apiKey, model, baseURL string) *Generator {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: goopenai.NewClientWithConfig(cfg), model: model}
}

type generatedDestination struct {
	Name       string   `json:"name"`
	Clues      []string `json:"clues"`
	FunFacts   []string `json:"funFacts"`
	Difficulty string   `json:"difficulty"`
	Continent  string   `json:"continent"`
	Country    string   `json:"country"`
	ImageURL   string   `json:"imageUrl"`
}

// Generate requests count destinations in batches of ten, steering each batch
// away from names already known or produced by earlier batches.
func (g *Generator) Generate(ctx context.Context, count int, existing []string) ([]domain.Destination, error) {
	avoid := append([]string(nil), existing...)
	var out []domain.Destination

	for remaining := count; remaining > 0; remaining -= batchSize {
		size := remaining
		if size > batchSize {
			size = batchSize
		}
		batch, err := g.generateBatch(ctx, size, avoid)
		if err != nil {
			return nil, err
		}
		for _, d := range batch {
			avoid = append(avoid, strings.ToLower(d.Name))
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (g *Generator) generateBatch(ctx context.Context, size int, avoid []string) ([]domain.Destination, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: BuildPrompt(size, avoid)},
		},
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: %w", domain.ErrGeneratedPayload)
	}
	return ParseDestinations(resp.Choices[0].Message.Content)
}

// BuildPrompt renders the generation request for size destinations.
func BuildPrompt(size int, avoid []string) string {
	return fmt.Sprintf(`Generate %d famous travel destinations with the following information for each:
1. Name of the destination (city, landmark, or natural wonder)
2. 3-4 cryptic clues that hint at the destination without directly naming it
3. 3-4 interesting fun facts about the destination
4. Difficulty level (easy, medium, or hard)
5. Continent (one of: %s)
6. Country

Format the response as a valid JSON array with objects having these properties:
- name (string)
- clues (array of strings)
- funFacts (array of strings)
- difficulty (string: "easy", "medium", or "hard")
- continent (string)
- country (string)

Make sure the destinations are diverse across continents and countries. Ensure none of these destinations are in the list: %s`,
		size, continentList(), strings.Join(avoid, ", "))
}

// ExtractJSONArray returns the text between the first '[' and the last ']'.
func ExtractJSONArray(text string) (string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return "", domain.ErrGeneratedPayload
	}
	return text[start : end+1], nil
}

// ParseDestinations decodes a model reply into destinations. Entries are not
// validated here.
func ParseDestinations(reply string) ([]domain.Destination, error) {
	raw, err := ExtractJSONArray(reply)
	if err != nil {
		return nil, err
	}
	var generated []generatedDestination
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, errors.Join(domain.ErrGeneratedPayload, err)
	}
	out := make([]domain.Destination, 0, len(generated))
	for _, g := range generated {
		out = append(out, domain.Destination{
			Name:       g.Name,
			Clues:      g.Clues,
			FunFacts:   g.FunFacts,
			Difficulty: domain.Difficulty(strings.ToLower(strings.TrimSpace(g.Difficulty))),
			Continent:  domain.Continent(strings.TrimSpace(g.Continent)),
			Country:    g.Country,
			ImageURL:   g.ImageURL,
		})
	}
	return out, nil
}

func continentList() string {
	names := make([]string, len(domain.Continents))
	for i, c := range domain.Continents {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
