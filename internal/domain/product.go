package domain

// Product is a record of the static storefront catalog.
type Product struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    string    `json:"price,omitempty"`
	NewPrice string    `json:"newPrice,omitempty"`
	OldPrice string    `json:"oldPrice,omitempty"`
	Discount string    `json:"discount,omitempty"`
	Image    string    `json:"image"`
	Origin   string    `json:"origin,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
}

// CurrentPrice returns the price a shopper pays today: the sale price when
// one is set, the regular price otherwise.
func (p Product) CurrentPrice() string {
	if p.NewPrice != "" {
		return p.NewPrice
	}
	return p.Price
}

// HasTag reports whether the product carries tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
