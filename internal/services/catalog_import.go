package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/validators"
)

// ImportResult counts the rows of one import.
type ImportResult struct {
	Created int
	Skipped int
}

// RowError points at the offending line of an import file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CatalogImporter loads tags and ingredients from CSV files. Every row is
// parsed before anything is written, and the writes of one file share a
// transaction, so a failed file imports nothing.
type CatalogImporter struct {
	store     repositories.CatalogStore
	delimiter rune
}

func NewCatalogImporter(store repositories.CatalogStore, delimiter rune) *CatalogImporter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CatalogImporter{store: store, delimiter: delimiter}
}

// ImportTags reads `name,color,slug` rows.
func (im *CatalogImporter) ImportTags(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := im.readRows(r, []string{"name", "color", "slug"})
	if err != nil {
		return ImportResult{}, err
	}

	tags := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		tag := models.Tag{Name: row.fields[0], Color: strings.ToUpper(row.fields[1]), Slug: row.fields[2]}
		switch {
		case tag.Name == "" || tag.Slug == "":
			return ImportResult{}, &RowError{Line: row.line, Err: errors.New("name and slug are required")}
		case !validators.ValidHexColor(tag.Color):
			return ImportResult{}, &RowError{Line: row.line, Err: fmt.Errorf("color %q is not #RRGGBB", row.fields[1])}
		}
		tags = append(tags, tag)
	}

	var result ImportResult
	err = im.store.InTransaction(ctx, func(store repositories.CatalogStore) error {
		result = ImportResult{}
		for i := range tags {
			created, err := store.CreateTagIfMissing(ctx, &tags[i])
			if err != nil {
				return &RowError{Line: rows[i].line, Err: err}
			}
			result.tally(created)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	result.record("tag")
	logging.Info().Int("created", result.Created).Int("skipped", result.Skipped).Msg("tags imported")
	return result, nil
}

// ImportIngredients reads `name,measurement_unit` rows.
func (im *CatalogImporter) ImportIngredients(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := im.readRows(r, []string{"name", "measurement_unit"})
	if err != nil {
		return ImportResult{}, err
	}

	ingredients := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		ing := models.Ingredient{Name: row.fields[0], MeasurementUnit: row.fields[1]}
		if ing.Name == "" || ing.MeasurementUnit == "" {
			return ImportResult{}, &RowError{Line: row.line, Err: errors.New("name and measurement_unit are required")}
		}
		ingredients = append(ingredients, ing)
	}

	var result ImportResult
	err = im.store.InTransaction(ctx, func(store repositories.CatalogStore) error {
		result = ImportResult{}
		for i := range ingredients {
			created, err := store.CreateIngredientIfMissing(ctx, &ingredients[i])
			if err != nil {
				return &RowError{Line: rows[i].line, Err: err}
			}
			result.tally(created)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	result.record("ingredient")
	logging.Info().Int("created", result.Created).Int("skipped", result.Skipped).Msg("ingredients imported")
	return result, nil
}

func (r *ImportResult) tally(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

// record adds a committed import to the row counters.
func (r ImportResult) record(kind string) {
	metrics.CatalogImportRows.WithLabelValues(kind, "created").Add(float64(r.Created))
	metrics.CatalogImportRows.WithLabelValues(kind, "skipped").Add(float64(r.Skipped))
}

type csvRow struct {
	line   int
	fields []string
}

// readRows parses every record, trimming fields and skipping blank lines.
// A first record equal to header (case-insensitive) is dropped.
func (im *CatalogImporter) readRows(r io.Reader, header []string) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = im.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []csvRow
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.Line, Err: perr.Err}
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if first {
			first = false
			if isHeader(record, header) {
				continue
			}
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, &RowError{Line: line, Err: fmt.Errorf("expected %d fields (%s), got %d", len(header), strings.Join(header, ","), len(record))}
		}
		rows = append(rows, csvRow{line: line, fields: record})
	}
	return rows, nil
}

func isHeader(record, header []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimPrefix(record[i], "\ufeff"), header[i]) {
			return false
		}
	}
	return true
}
