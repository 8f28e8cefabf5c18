package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"casebot/handler"
	"casebot/internal/domain"
	"casebot/internal/integrations/sheets"
	"casebot/internal/spill"
	"casebot/internal/store"
	"casebot/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	_ = godotenv.Load() // optional .env, env vars win

	botToken := mustEnv("TELEGRAM_BOT_TOKEN")
	spreadsheetID := mustEnv("SPREADSHEET_ID")
	accountEmail := mustEnv("SERVICE_ACCOUNT_EMAIL")
	privateKey := mustEnv("SERVICE_ACCOUNT_KEY")
	sheetName := envOr("SHEET_NAME", "Cases")
	spillPath := envOr("SPILL_FILE", "failed_records.jsonl")
	questionsFile := os.Getenv("QUESTIONS_FILE")

	allowedIDs, err := parseAllowedIDs(os.Getenv("ALLOWED_USER_IDS"))
	if err != nil {
		slog.Error("invalid ALLOWED_USER_IDS", "err", err)
		os.Exit(1)
	}

	catalog := domain.DefaultCatalog()
	if questionsFile != "" {
		catalog, err = domain.LoadCatalog(questionsFile)
		if err != nil {
			slog.Error("failed to load question catalog", "path", questionsFile, "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	api, err := sheets.NewGoogleAPI(ctx, spreadsheetID, accountEmail, privateKey)
	if err != nil {
		slog.Error("failed to create sheets API", "err", err)
		os.Exit(1)
	}
	sink, err := sheets.New(api, sheetName, catalog)
	if err != nil {
		slog.Error("failed to create sheets client", "err", err)
		os.Exit(1)
	}
	recorder, err := spill.NewFileRecorder(spillPath)
	if err != nil {
		slog.Error("failed to create spill recorder", "err", err)
		os.Exit(1)
	}

	svc, err := usecase.NewInterviewService(store.New(), catalog, sink, recorder)
	if err != nil {
		slog.Error("failed to create interview service", "err", err)
		os.Exit(1)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		slog.Error("failed to create telegram bot", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(bot, svc, allowedIDs, spreadsheetID, slog.Default())
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	slog.Info("casebot started", "bot", bot.Self.UserName, "sheet", sheetName, "questions", catalog.Len())

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	for update := range bot.GetUpdatesChan(updateCfg) {
		h.HandleUpdate(ctx, update)
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseAllowedIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
