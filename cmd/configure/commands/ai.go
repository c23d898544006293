package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/devotional/internal/config"
	"github.com/benvon/devotional/internal/services/ai"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const checkEntry = "Senhor, obrigado por mais um dia."

// NewAICmd creates the ai command
func NewAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Generative service diagnostics",
	}
	cmd.AddCommand(newAICheckCmd())
	return cmd
}

func newAICheckCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Send a test request to the configured generative service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if !cfg.AIConfigured() {
				fmt.Fprintln(out, "OPENAI_API_KEY is not set; the API will serve offline content")
				return nil
			}

			fmt.Fprintf(out, "Model: %s\n", cfg.AIModel)
			if cfg.AIBaseURL != "" {
				fmt.Fprintf(out, "Base URL: %s\n", cfg.AIBaseURL)
			}
			fmt.Fprintf(out, "API key: %s\n", ai.SanitizeAPIKey(cfg.OpenAIKey))

			provider := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zap.NewNop(), false)
			gateway := ai.NewGateway(provider)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			reflection, err := gateway.TryJournalReflection(ctx, checkEntry)
			if err != nil {
				if apiErr := ai.ExtractAPIError(err); apiErr != nil {
					return fmt.Errorf("generative service returned status %d (%s): %w", apiErr.StatusCode, apiErr.Code, err)
				}
				return fmt.Errorf("generative service check failed: %w", err)
			}

			fmt.Fprintf(out, "Response in %s: %s\n", time.Since(start).Round(time.Millisecond), ai.TruncateString(reflection, 120))
			fmt.Fprintln(out, "Generative service check passed")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}
