package domain

import "encoding/json"

// StyleRequest es el pedido libre del usuario mas su contexto opcional.
// UserContext se trata de forma opaca: solo se reenvia al prompt.
type StyleRequest struct {
	Text        string         `json:"text"`
	UserContext map[string]any `json:"userContext,omitempty"`
}

// StyleProfile es la extraccion estructurada de un pedido de estilo.
// Solo se construye via NewStyleProfile y se entrega por valor.
type StyleProfile struct {
	StyleCategories  []string `json:"styleCategories"`
	Occasion         string   `json:"occasion"`
	ColorPreferences []string `json:"colorPreferences"`
	FormalityLevel   int      `json:"formalityLevel"` // 1 (muy casual) a 10 (muy formal)
	Seasonality      []string `json:"seasonality"`
	BudgetIndicator  string   `json:"budgetIndicator"`
	Confidence       float64  `json:"confidence"`
}

// NewStyleProfile copia los slices para que el perfil no comparta memoria con el caller.
func NewStyleProfile(
	categories []string,
	occasion string,
	colors []string,
	formality int,
	seasonality []string,
	budget string,
	confidence float64,
) StyleProfile {
	return StyleProfile{
		StyleCategories:  cloneStrings(categories),
		Occasion:         occasion,
		ColorPreferences: cloneStrings(colors),
		FormalityLevel:   formality,
		Seasonality:      cloneStrings(seasonality),
		BudgetIndicator:  budget,
		Confidence:       confidence,
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ErrorKind clasifica los fallos del analizador.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "ValidationError"
	ErrorKindProvider   ErrorKind = "ProviderError"
	ErrorKindParse      ErrorKind = "ParseError"
)

const (
	AnalysisStatusSuccess = "success"
	AnalysisStatusError   = "error"
)

// AnalysisResult es el resultado atomico del analisis: exito con perfil o fallo tipado.
type AnalysisResult struct {
	Status     string        `json:"status"`
	Profile    *StyleProfile `json:"profile,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	ErrorKind  ErrorKind     `json:"errorKind,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// Success construye el resultado exitoso.
func Success(profile StyleProfile) AnalysisResult {
	return AnalysisResult{
		Status:     AnalysisStatusSuccess,
		Profile:    &profile,
		Confidence: profile.Confidence,
	}
}

// Failure construye el resultado de error.
func Failure(kind ErrorKind, message string) AnalysisResult {
	return AnalysisResult{
		Status:    AnalysisStatusError,
		ErrorKind: kind,
		Message:   message,
	}
}

// MarshalJSON emite confidence siempre en exito, aun cuando vale 0.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult
	if !r.IsSuccess() {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		Status     string        `json:"status"`
		Profile    *StyleProfile `json:"profile,omitempty"`
		Confidence float64       `json:"confidence"`
	}{
		Status:     r.Status,
		Profile:    r.Profile,
		Confidence: r.Confidence,
	})
}

func (r AnalysisResult) IsSuccess() bool {
	return r.Status == AnalysisStatusSuccess
}
