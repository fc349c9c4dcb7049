// Package shoppinglist renders the aggregated shopping list as plain text.
package shoppinglist

import (
	"fmt"
	"strings"

	"foodgram/backend/internal/repository"
)

const (
	Header   = "Shopping list:"
	Empty    = "Nothing to buy."
	FileName = "shopping_list.txt"
)

// Render writes one "name - amount (unit)" line per item under a header,
// or the Empty line when there is nothing to list.
func Render(items []repository.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	if len(items) == 0 {
		b.WriteString(Empty)
		b.WriteByte('\n')
		return b.String()
	}
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d (%s)\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
