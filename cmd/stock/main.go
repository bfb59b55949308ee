// cmd/stock/main.go
package main

import (
	"log/slog"
	"net/http"
	"os"

	"lendflow/internal/stock"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var svc stock.Service
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sqlx.Connect("postgres", dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
		svc = stock.NewService(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stock ledger")
		svc = stock.NewMemoryLedger()
	}

	handler := stock.NewHandler(svc)

	router := chi.NewRouter()
	handler.Routes(router)

	port := getEnv("PORT", "8081")
	logger.Info("starting stock service", slog.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
