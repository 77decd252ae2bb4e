// Package promo holds the table of promo codes and their discount rules.
package promo

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eldenfruit/storefront/internal/domain"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// Kind is the discount strategy of a rule.
type Kind string

const (
	KindPercent      Kind = "percent"
	KindFixed        Kind = "fixed"
	KindFreeShipping Kind = "free_shipping"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindPercent, KindFixed, KindFreeShipping:
		return true
	}
	return false
}

// Rule maps one promo code to its discount.
type Rule struct {
	Code        string       `yaml:"code" json:"code"`
	Kind        Kind         `yaml:"kind" json:"kind"`
	Value       domain.Money `yaml:"value" json:"value"`
	Description string       `yaml:"description" json:"description"`
}

// Discount returns the amount taken off subtotal. For free shipping it is the
// waived shipping fee, reported for display. The result is always within
// [0, subtotal].
func (r Rule) Discount(subtotal, waivedShipping domain.Money) domain.Money {
	if subtotal <= 0 {
		return 0
	}

	var d domain.Money
	switch r.Kind {
	case KindPercent:
		// floor(subtotal*v/100) without forming the product.
		d = subtotal/100*r.Value + subtotal%100*r.Value/100
	case KindFixed:
		d = r.Value
	case KindFreeShipping:
		d = waivedShipping
	}

	if d < 0 {
		return 0
	}
	if d > subtotal {
		return subtotal
	}
	return d
}

// DefaultRules returns the storefront's built-in promo table.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "ELDEN10", Kind: KindPercent, Value: 10, Description: "10% off"},
		{Code: "ELDEN50K", Kind: KindFixed, Value: 50000, Description: "50.000₫ off"},
		{Code: "FREESHIP", Kind: KindFreeShipping, Description: "Free shipping"},
		{Code: "WELCOME", Kind: KindPercent, Value: 15, Description: "15% off"},
	}
}

// Normalize trims and upper-cases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Catalog is an immutable lookup table of promo rules.
type Catalog struct {
	rules map[string]Rule
}

// NewCatalog validates rules and indexes them by normalized code.
func NewCatalog(rules []Rule) (*Catalog, error) {
	c := &Catalog{rules: make(map[string]Rule, len(rules))}
	for i, r := range rules {
		r.Code = Normalize(r.Code)
		if r.Code == "" {
			return nil, fmt.Errorf("promo rule %d: code is required", i)
		}
		if !r.Kind.IsValid() {
			return nil, fmt.Errorf("promo rule %s: unknown kind %q", r.Code, r.Kind)
		}
		if r.Value < 0 {
			return nil, fmt.Errorf("promo rule %s: value must not be negative", r.Code)
		}
		if r.Kind == KindPercent && r.Value > 100 {
			return nil, fmt.Errorf("promo rule %s: percent must not exceed 100", r.Code)
		}
		if _, dup := c.rules[r.Code]; dup {
			return nil, fmt.Errorf("promo rule %s: duplicate code", r.Code)
		}
		c.rules[r.Code] = r
	}
	return c, nil
}

// Default returns a catalog over DefaultRules.
func Default() *Catalog {
	c, err := NewCatalog(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

type fileFormat struct {
	Codes []Rule `yaml:"codes"`
}

// LoadFile reads a YAML promo table of the form:
//
//	codes:
//	  - code: ELDEN10
//	    kind: percent
//	    value: 10
//	    description: 10% off
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promo file: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse promo file: %w", err)
	}
	return NewCatalog(f.Codes)
}

// Lookup finds the rule for a user-entered code, case-insensitively.
func (c *Catalog) Lookup(code string) (Rule, error) {
	norm := Normalize(code)
	if norm == "" {
		return Rule{}, apperrors.InvalidPromoCode("promo code is required")
	}
	r, ok := c.rules[norm]
	if !ok {
		return Rule{}, apperrors.InvalidPromoCode(fmt.Sprintf("promo code %s is not valid", norm))
	}
	return r, nil
}

// Rules returns every rule ordered by code.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
