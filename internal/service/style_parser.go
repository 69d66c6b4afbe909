package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"style-ai/internal/domain"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// styleProfilePayload es el esquema que se exige a la salida del proveedor.
// Los punteros distinguen "ausente" de "valor cero".
type styleProfilePayload struct {
	StyleCategories  []string `json:"styleCategories" validate:"required,min=1,dive,required"`
	Occasion         string   `json:"occasion" validate:"required"`
	ColorPreferences []string `json:"colorPreferences" validate:"required,dive,required"`
	FormalityLevel   *int     `json:"formalityLevel" validate:"required,min=1,max=10"`
	Seasonality      seasons  `json:"seasonality" validate:"required,min=1,dive,required"`
	BudgetIndicator  string   `json:"budgetIndicator" validate:"required"`
	Confidence       *float64 `json:"confidence" validate:"omitempty,min=0,max=1"`
}

// seasons acepta "summer" o ["summer", "spring"].
type seasons []string

func (s *seasons) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = seasons{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("seasonality must be a string or a list of strings")
	}
	*s = many
	return nil
}

// StyleProfileParser valida la salida del LLM contra el esquema esperado.
// Falla cerrado: cualquier desviacion es un error, nunca un valor inventado.
type StyleProfileParser struct {
	validate          *validator.Validate
	defaultConfidence float64
}

func NewStyleProfileParser(defaultConfidence float64) *StyleProfileParser {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &StyleProfileParser{validate: v, defaultConfidence: defaultConfidence}
}

// Parse convierte el texto crudo del proveedor en un StyleProfile.
func (p *StyleProfileParser) Parse(raw string) (domain.StyleProfile, error) {
	candidate, fields, err := firstDecodableJSONObject(cleanLLMJSONResponse(raw))
	if err != nil {
		return domain.StyleProfile{}, err
	}
	if err := checkProfileKeys(fields); err != nil {
		return domain.StyleProfile{}, err
	}

	var payload styleProfilePayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return domain.StyleProfile{}, fmt.Errorf("invalid JSON: %w", err)
	}
	payload.normalize()

	if err := p.validate.Struct(payload); err != nil {
		return domain.StyleProfile{}, describeValidation(err)
	}

	confidence := p.defaultConfidence
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}

	return domain.NewStyleProfile(
		payload.StyleCategories,
		payload.Occasion,
		payload.ColorPreferences,
		*payload.FormalityLevel,
		payload.Seasonality,
		payload.BudgetIndicator,
		confidence,
	), nil
}

func (p *styleProfilePayload) normalize() {
	p.StyleCategories = trimAll(p.StyleCategories, true)
	p.Occasion = strings.TrimSpace(p.Occasion)
	p.ColorPreferences = trimAll(p.ColorPreferences, false)
	p.Seasonality = trimAll(p.Seasonality, true)
	p.BudgetIndicator = strings.ToLower(strings.TrimSpace(p.BudgetIndicator))
}

// trimAll conserva nil para que "required" siga detectando claves ausentes.
func trimAll(in []string, lower bool) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		out[i] = s
	}
	return out
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid style profile: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid style profile: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF"))
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// profileKeys son los nombres exactos del esquema. encoding/json los compara sin
// distinguir mayusculas, asi que las variantes se rechazan antes de decodificar.
var profileKeys = []string{
	"styleCategories",
	"occasion",
	"colorPreferences",
	"formalityLevel",
	"seasonality",
	"budgetIndicator",
	"confidence",
}

func checkProfileKeys(fields map[string]json.RawMessage) error {
	for key := range fields {
		for _, want := range profileKeys {
			if key != want && strings.EqualFold(key, want) {
				return fmt.Errorf("invalid style profile: unexpected key %q, expected %q", key, want)
			}
		}
	}
	return nil
}

// firstDecodableJSONObject prueba cada '{' en orden y devuelve el primer objeto
// balanceado que sea JSON valido.
func firstDecodableJSONObject(input string) (string, map[string]json.RawMessage, error) {
	var lastErr error
	for offset := 0; offset < len(input); {
		idx := strings.IndexByte(input[offset:], '{')
		if idx == -1 {
			break
		}
		start := offset + idx
		if candidate := extractJSONObjectAt(input, start); candidate != "" {
			var fields map[string]json.RawMessage
			err := json.Unmarshal([]byte(candidate), &fields)
			if err == nil {
				return candidate, fields, nil
			}
			lastErr = err
		}
		offset = start + 1
	}
	if lastErr != nil {
		return "", nil, fmt.Errorf("invalid JSON: %w", lastErr)
	}
	return "", nil, errors.New("provider output contains no JSON object")
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, respetando strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}
	return extractJSONObjectAt(input, start)
}

func extractJSONObjectAt(input string, start int) string {
	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}
