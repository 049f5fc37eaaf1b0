/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/valpere/bookweave/internal/store"
	"github.com/valpere/bookweave/internal/translate"
)

// newLogger builds the process logger from the configured level.
func newLogger() *slog.Logger {
	var level slog.Level
	switch viper.GetString("log_level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured database, creating its directory first.
func openStore() (*store.Store, error) {
	dbPath := viper.GetString("db")
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return store.New(dbPath)
}

// buildTranslator constructs the translation service from CLI parameters.
func buildTranslator(service, credentials, model, baseURL string, logger *slog.Logger) (translate.Translator, error) {
	switch service {
	case "google":
		return translate.NewGoogleTranslator(credentials, logger), nil
	case "ollama":
		return translate.NewOllamaTranslator(model, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown translation service: %s", service)
	}
}
