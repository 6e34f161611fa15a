package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/go-pdf/fpdf"
)

const shoppingListTitle = "Shopping list"

// Document is a rendered download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ShoppingListService renders the aggregated ingredients of a user's cart.
type ShoppingListService struct {
	cart repositories.ShoppingCartRepository
	// fontPath is an optional UTF-8 TrueType font for PDF output. Without it
	// the PDF falls back to a core font and cp1252 text.
	fontPath string
}

func NewShoppingListService(cart repositories.ShoppingCartRepository, fontPath string) *ShoppingListService {
	return &ShoppingListService{cart: cart, fontPath: fontPath}
}

// Items returns the aggregated shopping list for userID.
func (s *ShoppingListService) Items(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	return s.cart.AggregateIngredients(ctx, userID)
}

// Render builds the shopping list document in format "txt" (the default) or
// "pdf". An empty cart renders the title only.
func (s *ShoppingListService) Render(ctx context.Context, userID uint, format string) (*Document, error) {
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "pdf" {
		return nil, apperrors.Validationf("unsupported format %q, use txt or pdf", format)
	}

	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	var doc *Document
	if format == "pdf" {
		body, err := s.renderPDF(items)
		if err != nil {
			return nil, err
		}
		doc = &Document{Filename: "shopping_list.pdf", ContentType: "application/pdf", Body: body}
	} else {
		doc = &Document{Filename: "shopping_list.txt", ContentType: "text/plain; charset=utf-8", Body: []byte(RenderText(items))}
	}
	metrics.ShoppingListDownloads.WithLabelValues(format).Inc()
	return doc, nil
}

// FormatItem renders one line as `name (unit) — total`.
func FormatItem(item models.ShoppingListItem) string {
	return fmt.Sprintf("%s (%s) — %d", item.Name, item.MeasurementUnit, item.Total)
}

// RenderText renders the plain-text shopping list.
func RenderText(items []models.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListTitle)
	b.WriteString("\n")
	if len(items) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(FormatItem(item))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ShoppingListService) renderPDF(items []models.ShoppingListItem) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(shoppingListTitle, true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if s.fontPath != "" {
		family = "Body"
		pdf.AddUTF8Font(family, "", s.fontPath)
		tr = func(text string) string { return text }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 18)
	pdf.CellFormat(0, 12, tr(shoppingListTitle), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 12)
	for _, item := range items {
		pdf.CellFormat(0, 8, tr(FormatItem(item)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
