package service

import (
	"encoding/json"
	"strings"

	"style-ai/internal/domain"
	"style-ai/internal/llm"
)

// StylePromptVersion identifica la plantilla de instrucciones vigente.
const StylePromptVersion = "style-analysis/v1"

const styleSystemPrompt = `You are a fashion stylist assistant. Analyze the user's fashion style request and extract key information.
Extract:
1. Style categories (casual, formal, business, etc.)
2. Occasion type
3. Color preferences
4. Formality level (integer from 1 = very casual to 10 = very formal)
5. Season/weather considerations
6. Budget indicators (low, medium or high)

Return ONLY a JSON object with exactly this format, no markdown and no extra text:
{
  "styleCategories": ["casual"],
  "occasion": "weekend",
  "colorPreferences": ["navy", "white"],
  "formalityLevel": 3,
  "seasonality": ["summer"],
  "budgetIndicator": "medium"
}
Use an empty list for colorPreferences when the request states none. Never omit a key.`

// BuildPrompt arma el request hacia el proveedor. Es determinista: el mismo
// (text, userContext) produce siempre el mismo payload (json ordena las claves del mapa).
func (a *StyleAnalyzer) BuildPrompt(req domain.StyleRequest) llm.CompletionRequest {
	return llm.CompletionRequest{
		Model: a.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: styleSystemPrompt},
			{Role: llm.RoleUser, Content: buildStyleUserPrompt(req)},
		},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}
}

func buildStyleUserPrompt(req domain.StyleRequest) string {
	var sb strings.Builder
	sb.WriteString("Request: ")
	sb.WriteString(quoteJSONString(strings.TrimSpace(req.Text)))
	if len(req.UserContext) > 0 {
		sb.WriteString("\n\nUser context (prior preferences, sizing, history):\n")
		sb.WriteString(renderUserContext(req.UserContext))
	}
	return sb.String()
}

// renderUserContext serializa el contexto de forma canonica. Si no es serializable
// se omite en lugar de fallar: el contexto es opcional y opaco.
func renderUserContext(userContext map[string]any) string {
	raw, err := json.Marshal(userContext)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func quoteJSONString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
