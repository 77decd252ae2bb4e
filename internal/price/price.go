// Package price converts between the storefront's textual prices
// ("120.000₫", "1,250,000 VND") and domain.Money.
package price

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eldenfruit/storefront/internal/domain"
)

// Symbol is the currency suffix used in labels.
const Symbol = "₫"

// MaxAmount is the largest price the storefront accepts: 1.000 tỷ đồng.
const MaxAmount domain.Money = 1_000_000_000_000

// Parse strips every non-digit character and reads what is left as a whole
// number of currency units. Empty, non-numeric or out-of-range input yields 0;
// anything above MaxAmount is out of range.
// Fractions are not supported: "12.5" reads as 125.
func Parse(text string) domain.Money {
	m, _ := parse(text)
	return m
}

// InRange reports whether text parses to at most MaxAmount. Text without
// digits is in range and reads as 0.
func InRange(text string) bool {
	_, ok := parse(text)
	return ok
}

func parse(text string) (domain.Money, bool) {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if c := text[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return 0, true
	}

	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil || domain.Money(n) > MaxAmount {
		return 0, false
	}
	return domain.Money(n), true
}

// Format renders m with Vietnamese digit grouping and the currency symbol.
func Format(m domain.Money) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprintf("%d", int64(m)) + Symbol
}

// DiscountBadge returns the "-N%" badge shown on sale products, or "" when
// either price is missing or the sale price is not lower.
func DiscountBadge(oldPrice, newPrice string) string {
	if oldPrice == "" || newPrice == "" {
		return ""
	}
	oldAmount, newAmount := Parse(oldPrice), Parse(newPrice)
	if oldAmount <= newAmount {
		return ""
	}
	pct := math.Round(float64(oldAmount-newAmount) / float64(oldAmount) * 100)
	return fmt.Sprintf("-%d%%", int(pct))
}
