/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the chatiqa CLI: batch image-quality
// evaluation through multi-role model conversations, plus reporting
// over previously written results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/DDDOOONNN/ChatIQA/agents/batch"
	"github.com/DDDOOONNN/ChatIQA/agents/evaluator"
	"github.com/DDDOOONNN/ChatIQA/agents/retry"
	"github.com/DDDOOONNN/ChatIQA/agents/transport"
	"github.com/DDDOOONNN/ChatIQA/imageset"
	"github.com/DDDOOONNN/ChatIQA/report"
)

// secrets holds the API credentials, read from the environment after an
// optional .env file is loaded.
type secrets struct {
	GeminiAPIKey    string `env:"GENAI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

var (
	flagImageDir        string
	flagImagePrefix     string
	flagImageExt        string
	flagComparisonImage string
	flagComparisonScore int
	flagOutput          string
	flagTotalImages     int
	flagNumCycles       int
	flagBatchSize       int
	flagRetryAttempts   int
	flagRetryDelay      time.Duration
	flagPace            time.Duration
	flagModerate        bool
	flagProvider        string
	flagModel           string

	flagFactorsColumn string
	flagFactorsTop    int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatiqa",
		Short: "Batch image-quality assessment through model conversations",
		Long: `chatiqa scores images by running a structured conversation between
three model roles: a Responder that assesses the image, an Asker that
probes the assessment, and an optional Judge that keeps both on topic.
Results are written to xlsx workbooks, one per batch.`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newFactorsCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a numbered image set and write result workbooks",
		Args:  cobra.NoArgs,
		RunE:  runEvaluation,
	}

	cmd.Flags().StringVar(&flagImageDir, "image-dir", "images", "directory holding the numbered image set")
	cmd.Flags().StringVar(&flagImagePrefix, "image-prefix", "img_", "filename prefix of the numbered images")
	cmd.Flags().StringVar(&flagImageExt, "image-ext", ".png", "filename extension of the numbered images")
	cmd.Flags().StringVar(&flagComparisonImage, "comparison-img", "comparison.png", "path to the fixed comparison image")
	cmd.Flags().IntVar(&flagComparisonScore, "comparison-score", 54, "stated reference score of the comparison image")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "results.xlsx", "base output path for result workbooks")
	cmd.Flags().IntVarP(&flagTotalImages, "total-images", "n", 100, "number of images to evaluate, starting at 1")
	cmd.Flags().IntVar(&flagNumCycles, "num-cycles", 3, "question/answer rounds per image")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 50, "records per output workbook; 0 writes one workbook")
	cmd.Flags().IntVar(&flagRetryAttempts, "retry-attempts", 3, "send attempts per message")
	cmd.Flags().DurationVar(&flagRetryDelay, "retry-delay", 5*time.Second, "fixed delay between send attempts")
	cmd.Flags().DurationVar(&flagPace, "pace", 10*time.Second, "fixed delay after each image completes")
	cmd.Flags().BoolVar(&flagModerate, "moderate", true, "enable the Judge persona")
	cmd.Flags().StringVar(&flagProvider, "provider", "gemini", "chat API family (gemini, openai, claude)")
	cmd.Flags().StringVar(&flagModel, "model", "gemini-2.0-flash", "model name for the chosen provider")

	return cmd
}

func runEvaluation(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sec, err := loadSecrets(ctx)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, sec)
	if err != nil {
		return err
	}

	source := &imageset.Source{
		Dir:    flagImageDir,
		Prefix: flagImagePrefix,
		Ext:    flagImageExt,
	}

	// The comparison image anchors every evaluation; without it no
	// record can be produced, so failing to load it is fatal.
	comparison, err := imageset.LoadFile(flagComparisonImage)
	if err != nil {
		return fmt.Errorf("loading comparison image %s: %w", flagComparisonImage, err)
	}

	eval, err := evaluator.New(evaluator.Config{
		Client: client,
		Retry: retry.Config{
			MaxAttempts: flagRetryAttempts,
			Delay:       flagRetryDelay,
		},
		Cycles:          flagNumCycles,
		Moderate:        flagModerate,
		ComparisonName:  flagComparisonImage,
		ComparisonScore: flagComparisonScore,
	})
	if err != nil {
		return err
	}

	runner := &batch.Runner{
		Eval:       eval,
		Source:     source,
		Sink:       &report.XLSXSink{Path: flagOutput, Cycles: flagNumCycles},
		Comparison: comparison,
		Cycles:     flagNumCycles,
		ChunkSize:  flagBatchSize,
		Pace:       flagPace,
	}

	clog.InfoContextf(ctx, "Evaluating %d images with %s/%s", flagTotalImages, flagProvider, flagModel)
	records := runner.Run(ctx, flagTotalImages)
	clog.InfoContextf(ctx, "Run complete: %d records", len(records))
	return nil
}

func newFactorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors <results.xlsx>...",
		Short: "Count key-factor mentions across result workbooks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var texts []string
			for _, path := range args {
				col, err := report.ReadColumn(path, flagFactorsColumn)
				if err != nil {
					return err
				}
				texts = append(texts, col...)
			}
			counts := report.CountFactors(texts)
			return report.RenderFactors(cmd.OutOrStdout(), counts, flagFactorsTop)
		},
	}

	cmd.Flags().StringVar(&flagFactorsColumn, "column", "Final_Summary", "workbook column to scan")
	cmd.Flags().IntVar(&flagFactorsTop, "top", 30, "number of factors to show")

	return cmd
}

// loadSecrets reads credentials from a .env file when present, then from
// the environment.
func loadSecrets(ctx context.Context) (*secrets, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var sec secrets
	if err := envconfig.Process(ctx, &sec); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &sec, nil
}

// newClient builds the transport for the requested provider family.
func newClient(ctx context.Context, sec *secrets) (transport.Client, error) {
	switch flagProvider {
	case "gemini":
		if sec.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GENAI_API_KEY is required for provider %q", flagProvider)
		}
		return transport.NewGemini(ctx, sec.GeminiAPIKey, flagModel)
	case "openai":
		if sec.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", flagProvider)
		}
		return transport.NewOpenAI(sec.OpenAIAPIKey, sec.OpenAIBaseURL, flagModel), nil
	case "claude":
		if sec.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", flagProvider)
		}
		return transport.NewClaude(sec.AnthropicAPIKey, flagModel), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be gemini, openai, or claude", flagProvider)
	}
}
