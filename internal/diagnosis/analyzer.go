package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SessionInput is what the analyzer sees about a finished consultation.
type SessionInput struct {
	Complaint   string
	SessionType string
}

// Assessment is the analyzer's verdict on a session.
type Assessment struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Severity        string   `json:"severity"`
	NextSteps       string   `json:"next_steps"`
}

// Analyzer produces a post-session assessment.
type Analyzer interface {
	Analyze(ctx context.Context, input SessionInput) (*Assessment, error)
}

const systemInstruction = `You are a clinical assistant supporting licensed Indonesian
psychologists. Given a patient's intake complaint, write a short post-consultation
assessment in Bahasa Indonesia. Respond with a single JSON object and nothing else:
{"summary": string, "recommendations": [string, ...], "severity": "low"|"medium"|"high",
"next_steps": string}. The assessment supports, never replaces, the practitioner's
own judgement.`

// GeminiAnalyzer implements Analyzer using Google's Gemini API.
type GeminiAnalyzer struct {
	client  *genai.Client
	modelID string
}

// NewGeminiAnalyzer creates a Gemini-backed analyzer.
func NewGeminiAnalyzer(ctx context.Context, apiKey, modelID string) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("diagnosis: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("diagnosis: failed to create gemini client: %w", err)
	}

	return &GeminiAnalyzer{client: client, modelID: modelID}, nil
}

// Analyze sends the session to Gemini and parses the structured verdict.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, input SessionInput) (*Assessment, error) {
	model := a.client.GenerativeModel(a.modelID)
	model.SetTemperature(0.3)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))

	prompt := fmt.Sprintf("Session type: %s\nPatient complaint:\n%s", input.SessionType, input.Complaint)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("diagnosis: gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, errors.New("diagnosis: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("diagnosis: gemini returned empty content")
	}

	var raw strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}
	return parseAssessment(raw.String())
}

// Close releases resources held by the Gemini client.
func (a *GeminiAnalyzer) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// parseAssessment decodes the model's JSON verdict. Models wrap JSON in
// markdown fences often enough that stripping them is mandatory.
func parseAssessment(text string) (*Assessment, error) {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSpace(strings.TrimSuffix(text, "```"))

	var out Assessment
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("diagnosis: unparseable assessment: %w", err)
	}
	if out.Summary == "" {
		return nil, errors.New("diagnosis: assessment is missing a summary")
	}
	switch out.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		out.Severity = SeverityMedium
	}
	return &out, nil
}
