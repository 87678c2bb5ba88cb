// lexuz-bot answers Uzbek legal/education questions from a precomputed
// lex.uz embedding index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/abduilm/lexuz-bot/internal/config"
	"github.com/abduilm/lexuz-bot/internal/index"
	"github.com/abduilm/lexuz-bot/internal/llm"
	"github.com/abduilm/lexuz-bot/internal/logging"
	"github.com/abduilm/lexuz-bot/internal/prompt"
	"github.com/abduilm/lexuz-bot/internal/rank"
	"github.com/abduilm/lexuz-bot/internal/server"
	"github.com/abduilm/lexuz-bot/internal/service"
	"github.com/abduilm/lexuz-bot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "lexuz-bot",
		Short: "Uzbek legal/education RAG service over a local lex.uz index",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")

	rootCmd.AddCommand(serveCommand(&cfgPath))
	rootCmd.AddCommand(askCommand(&cfgPath))
	rootCmd.AddCommand(tuiCommand(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService assembles the local-variant ask service from config.
func buildService(cfg *config.AppConfig) (*service.LocalService, error) {
	store, err := index.Load(cfg.Index.Dir, cfg.Index.EmbeddingsFile, cfg.Index.MetaFile)
	if err != nil {
		return nil, err
	}
	log.Info().Int("passages", store.Len()).Int("dimension", store.Dim()).Msg("Index loaded")

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

	ranker := rank.New(store, client, rank.Options{
		MinSimilarity:      cfg.Retrieval.MinSimilarity,
		TrustedDomain:      cfg.Boost.TrustedDomain,
		Keywords:           cfg.Boost.Keywords,
		CuratedSourceTypes: cfg.Boost.CuratedSourceTypes,
		DomainBoost:        cfg.Boost.DomainBoost,
		KeywordBoost:       cfg.Boost.KeywordBoost,
		CuratedBoost:       cfg.Boost.CuratedBoost,
	})

	svc := service.NewLocal(ranker, client, prompt.New(cfg.Retrieval.MaxChunkChars), service.Options{
		TopK:          cfg.Retrieval.TopK,
		EscalateSim:   cfg.Retrieval.EscalateSim,
		ChatModel:     cfg.OpenAI.ChatModel,
		FallbackModel: cfg.OpenAI.FallbackModel,
		TrustedDomain: cfg.Boost.TrustedDomain,
		MaxSources:    cfg.Retrieval.MaxSources,
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
	return &cobra.Command{
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
			ans, err := svc.Ask(cmd.Context(), strings.Join(args, " "))
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
}

func tuiCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, "warn")
			if err != nil {
				return err
			}
			svc, err := buildService(cfg)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(svc)).Run()
			return err
		},
	}
}
