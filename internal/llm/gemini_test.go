package llm

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestSplitGeminiMessages(t *testing.T) {
	system, parts := splitGeminiMessages([]Message{
		{Role: RoleSystem, Content: "instrucciones"},
		{Role: RoleUser, Content: "pedido"},
	})
	if system != "instrucciones" {
		t.Fatalf("unexpected system instruction: %q", system)
	}
	if len(parts) != 1 || parts[0] != genai.Text("pedido") {
		t.Fatalf("unexpected parts: %#v", parts)
	}
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}},
	}
	out, err := geminiText(resp)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != `{"a":1}` {
		t.Fatalf("unexpected text: %q", out)
	}

	if _, err := geminiText(&genai.GenerateContentResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
