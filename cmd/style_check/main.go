package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"style-ai/internal/config"
	"style-ai/internal/domain"
	"style-ai/internal/llm"
	"style-ai/internal/service"
)

// style_check analiza un pedido de estilo desde la terminal.
// Uso: style_check [-context '{"size":"M"}'] "texto del pedido"
// Sin argumentos lee el texto desde stdin.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	rawContext := flag.String("context", "", "user context as a JSON object")
	verbose := flag.Bool("v", false, "log provider calls to stderr")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	text, err := readText(flag.Args(), os.Stdin)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	var userContext map[string]any
	if strings.TrimSpace(*rawContext) != "" {
		if err := json.Unmarshal([]byte(*rawContext), &userContext); err != nil {
			log.Fatalf("invalid -context: %v", err)
		}
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	llmClient, closeLLM, err := llm.NewProvider(ctx, llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Timeout:     cfg.LLMTimeout,
		MaxAttempts: cfg.LLMMaxAttempts,
	}, logger)
	if err != nil {
		log.Fatalf("llm provider: %v", err)
	}
	defer closeLLM()

	analyzer := service.NewStyleAnalyzer(llmClient, service.StyleAnalyzerConfig{
		Model:             cfg.LLMModel,
		MaxTokens:         cfg.LLMMaxTokens,
		Temperature:       cfg.LLMTemperature,
		Timeout:           cfg.LLMTimeout,
		DefaultConfidence: cfg.LLMDefaultConfidence,
		APIKey:            cfg.LLMAPIKey,
	}, logger)

	result := analyzer.Analyze(ctx, domain.StyleRequest{Text: text, UserContext: userContext})

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if !result.IsSuccess() {
		os.Exit(1)
	}
}

func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
