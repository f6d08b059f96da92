package cartstore

import (
	"github.com/angelmondragon/bookstore/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one book in the cart. Quantity is always at least one.
type Line struct {
	BookID    uuid.UUID
	Title     string
	Author    string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Total() decimal.Decimal {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

func LineCount(lines []Line) int {
	return len(lines)
}

func TotalQuantity(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Snapshot is the store state handed to subscribers.
type Snapshot struct {
	UserID uuid.UUID
	Bound  bool
	Lines  []Line
}

func (s Snapshot) LineCount() int { return LineCount(s.Lines) }
func (s Snapshot) TotalQuantity() int { return TotalQuantity(s.Lines) }
func (s Snapshot) Subtotal() decimal.Decimal { return Subtotal(s.Lines) }
func (s Snapshot) Summary() pricing.Summary { return pricing.Summarize(Subtotal(s.Lines)) }

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
