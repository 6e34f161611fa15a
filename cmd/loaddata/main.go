// Command loaddata seeds the tag and ingredient catalogs from CSV files.
//
//	loaddata -tags data/tags.csv -ingredients data/ingredients.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"unicode/utf8"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/anonto42/foodgram/backend/pkg/config"
)

func main() {
	tagsPath := flag.String("tags", "", "CSV file with name,color,slug rows")
	ingredientsPath := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	delimiter := flag.String("delimiter", ",", "field delimiter")
	flag.Parse()

	if *tagsPath == "" && *ingredientsPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	sep, size := utf8.DecodeRuneInString(*delimiter)
	if size == 0 || size != len(*delimiter) {
		fmt.Fprintln(os.Stderr, "delimiter must be a single character")
		os.Exit(2)
	}

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: logging.FormatFor(cfg.Env, cfg.LogFormat)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *tagsPath, *ingredientsPath, sep); err != nil {
		logging.Error().Err(err).Msg("import failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, tagsPath, ingredientsPath string, sep rune) error {
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := models.AutoMigrate(db.Postgres); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	catalog := repositories.NewPostgresCatalogRepository(db.Postgres)
	importer := services.NewCatalogImporter(catalog, sep)

	if tagsPath != "" {
		if err := importFile(tagsPath, "tags", func(f *os.File) (services.ImportResult, error) {
			return importer.ImportTags(ctx, f)
		}); err != nil {
			return err
		}
	}
	if ingredientsPath != "" {
		if err := importFile(ingredientsPath, "ingredients", func(f *os.File) (services.ImportResult, error) {
			return importer.ImportIngredients(ctx, f)
		}); err != nil {
			return err
		}
	}
	return nil
}

func importFile(path, kind string, load func(*os.File) (services.ImportResult, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("%s: %d created, %d skipped\n", kind, result.Created, result.Skipped)
	return nil
}
