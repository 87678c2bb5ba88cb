// lexuz-live answers Uzbek legal/education questions from freshly fetched
// lex.uz pages found through a site-restricted web search.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abduilm/lexuz-bot/internal/config"
	"github.com/abduilm/lexuz-bot/internal/live"
	"github.com/abduilm/lexuz-bot/internal/llm"
	"github.com/abduilm/lexuz-bot/internal/logging"
	"github.com/abduilm/lexuz-bot/internal/prompt"
	"github.com/abduilm/lexuz-bot/internal/server"
	"github.com/abduilm/lexuz-bot/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "lexuz-live",
		Short: "Uzbek legal/education RAG service over live lex.uz search",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")

	rootCmd.AddCommand(serveCommand(&cfgPath))
	rootCmd.AddCommand(askCommand(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService assembles the live-variant ask service from config.
func buildService(cfg *config.AppConfig) (*service.LiveService, error) {
	searcher, err := live.NewSearchClient(live.SearchConfig{
		BaseURL:     cfg.Live.SearchURL,
		APIKeyEnv:   cfg.Live.APIKeyEnv,
		EngineIDEnv: cfg.Live.EngineIDEnv,
		Timeout:     time.Duration(cfg.Live.SearchTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	fetcher := live.NewPageFetcher(time.Duration(cfg.Live.FetchTimeoutSec) * time.Second)
	extractor := live.NewExtractor(cfg.Live.ContentSelectors, cfg.Live.MinContentChars, cfg.Live.MaxPageChars)
	retriever := live.NewRetriever(searcher, fetcher, extractor, cfg.Boost.TrustedDomain)

	client, err := llm.New(llm.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
		ChatModel:   cfg.OpenAI.ChatModel,
		EmbedModel:  cfg.OpenAI.EmbedModel,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
	})
	if err != nil {
		return nil, err
	}

	svc := service.NewLive(retriever, client, prompt.New(cfg.Retrieval.MaxChunkChars), service.LiveOptions{
		ResultCount: cfg.Live.ResultCount,
		ChatModel:   cfg.OpenAI.ChatModel,
	})
	return svc, nil
}

func loadConfig(path, logLevel string) (*config.AppConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logging.Setup(logLevel)
	return cfg, nil
}

func serveCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, "")
			if err != nil {
				return err
			}
			svc, err := buildService(cfg)
			if err != nil {
				return err
			}

			srv := server.New(cfg.Server.Host, cfg.Server.Port, svc)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}

func askCommand(cfgPath *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, "warn")
			if err != nil {
				return err
			}
			svc, err := buildService(cfg)
			if err != nil {
				return err
			}
			ans, err := svc.AskN(cmd.Context(), strings.Join(args, " "), count)
			if err != nil {
				return err
			}
			fmt.Println(ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Println("\nRasmiy manbalar (lex.uz):")
				for _, s := range ans.Sources {
					fmt.Println("  " + s.URL)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of pages to fetch (default from config)")
	return cmd
}
