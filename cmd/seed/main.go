package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"expensetracker/internal/client"
	"expensetracker/internal/handler"
	"expensetracker/internal/log"
	"expensetracker/internal/model"
)

// Seeds a demo account through the public API.
func main() {
	apiURL := flag.String("api", envOr("SEED_API_URL", "http://localhost:8080/api"), "API base URL")
	email := flag.String("email", envOr("SEED_EMAIL", "demo@example.com"), "demo user email")
	password := flag.String("password", envOr("SEED_PASSWORD", "demo12345"), "demo user password")
	count := flag.Int("count", 60, "number of expenses to create")
	days := flag.Int("days", 180, "spread expenses over this many past days")
	seed := flag.Int64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	logger := log.New(log.Config{Level: log.ParseLevel(envOr("LOG_LEVEL", "info")), Component: log.ComponentSeed, Output: os.Stdout})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	api := client.New(*apiURL, client.WithOnUnauthorized(func(req *http.Request) {
		logger.Warn("request rejected as unauthorized", log.FieldPath, req.URL.Path)
	}))

	if _, err := api.Register(ctx, *email, *password, "Demo User"); err != nil {
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "USER_ALREADY_EXISTS" {
			logger.Error("register failed", log.FieldError, err.Error())
			os.Exit(1)
		}
		logger.Info("demo user already exists", "email", *email)
	}
	if _, err := api.Login(ctx, *email, *password); err != nil {
		logger.Error("login failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	existing, err := api.ListCategories(ctx)
	if err != nil {
		logger.Error("list categories failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	byName := make(map[string]model.Category, len(existing))
	for _, c := range existing {
		byName[c.Name] = c
	}
	for _, name := range handler.DemoCategories {
		if _, ok := byName[name]; ok {
			continue
		}
		created, err := api.CreateCategory(ctx, name)
		if err != nil {
			logger.Error("create category failed", "name", name, log.FieldError, err.Error())
			os.Exit(1)
		}
		byName[name] = *created
	}

	categories := make([]model.Category, 0, len(byName))
	for _, c := range byName {
		categories = append(categories, c)
	}

	faker := gofakeit.New(*seed)
	now := time.Now().UTC()
	window := time.Duration(*days) * 24 * time.Hour
	created := 0
	for i := 0; i < *count; i++ {
		category := categories[faker.Number(0, len(categories)-1)]
		at := faker.DateRange(now.Add(-window), now)
		_, err := api.CreateExpense(ctx, client.NewExpense{
			Title:      faker.ProductName(),
			Amount:     decimal.NewFromFloat(faker.Price(1, 250)).Round(2),
			Note:       faker.Sentence(6),
			CategoryID: category.ID,
			CreatedAt:  &at,
		})
		if err != nil {
			logger.Warn("create expense failed", log.FieldError, err.Error())
			continue
		}
		created++
	}

	logger.Info("seed completed", "email", *email, "categories", len(categories), "expenses", created, "requested", *count)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
