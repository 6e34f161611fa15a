package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainTextPolicy = bluemonday.StrictPolicy()

// plainText strips markup from user input and returns the visible text.
// Entities produced by the policy are decoded again so "salt & pepper"
// round-trips unchanged.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}
