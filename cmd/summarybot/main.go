package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/summarybot/summarybot/internal/api"
	"github.com/summarybot/summarybot/internal/biz/usecase"
	"github.com/summarybot/summarybot/internal/conf"
	"github.com/summarybot/summarybot/internal/data"
	"github.com/summarybot/summarybot/internal/infra/gemini"
	"github.com/summarybot/summarybot/internal/infra/slack"
	"github.com/summarybot/summarybot/internal/server"
	"github.com/summarybot/summarybot/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize clients
	slackClient := slack.NewClient(cfg.Slack.BotToken)

	ctx := context.Background()
	botUserID := cfg.Slack.BotUserID
	if botUserID == "" {
		resolved, err := slackClient.AuthTest(ctx)
		if err != nil {
			log.Fatalf("Failed to resolve bot user ID: %v", err)
		}
		botUserID = resolved
	}
	fmt.Printf("[SummaryBot] Bot user: %s\n", botUserID)

	var geminiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient = gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		fmt.Println("[SummaryBot] Gemini summarizer enabled")
	} else {
		fmt.Println("[SummaryBot] GEMINI_API_KEY not set, summaries degrade to fallbacks")
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(geminiClient, cfg.Store.DBPath, cfg.Prompts)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	fmt.Printf("[SummaryBot] DB: %s\n", cfg.Store.DBPath)

	// Initialize usecase layer
	fetchUC := usecase.NewFetchUsecase(slackClient, botUserID)
	contextUC := usecase.NewContextUsecase(repos.Context, cfg.Prompts.Followup.Indicators)
	ledgerUC := usecase.NewLedgerUsecase(repos.Ledger)
	vipUC := usecase.NewVIPUsecase(repos.VIP, slackClient)
	classifier := usecase.NewBlendedClassifier(usecase.NewRuleClassifier(), repos.Classifier)

	// Initialize service layer
	dispatcher := service.NewDispatcher(service.Options{
		Platform:      slackClient,
		Summarizer:    repos.Summarizer,
		Classifier:    classifier,
		Fetch:         fetchUC,
		Contexts:      contextUC,
		Ledger:        ledgerUC,
		VIPs:          vipUC,
		Responder:     usecase.NewResponder(),
		Summaries:     repos.Summary,
		ReadStatus:    repos.ReadStatus,
		Interactions:  repos.Interaction,
		BotUserID:     botUserID,
		WorkspaceID:   cfg.Slack.WorkspaceID,
		WorkspaceName: cfg.Slack.WorkspaceName,
		DefaultHours:  cfg.Summary.DefaultHours,
	})

	// Diagnostics server on loopback
	apiServer := api.NewServer(repos.Ledger, repos.Summary, cfg.API.DiagnosticsPort)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[SummaryBot] Diagnostics server error: %v\n", err)
		}
	}()

	// Slack event intake
	srv := server.NewSlackServer(dispatcher, botUserID, cfg.API.EventPort)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		srv.Stop()
		apiServer.Stop()
		repos.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting SummaryBot...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
