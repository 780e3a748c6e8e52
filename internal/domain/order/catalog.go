package order

// Variant identifies a vehicle variant by colour and model
type Variant struct {
	Colour string
	Model  string
}

// FasciaPair holds the front and rear fascia item ids for one variant
type FasciaPair struct {
	Front string
	Rear  string
}

// CatalogEntry is one row of the translation table
type CatalogEntry struct {
	Variant
	FasciaPair
}

// Catalog translates (colour, model) into the fascia items an order needs.
// It is built once at startup and never mutated afterwards.
type Catalog struct {
	pairs map[Variant]FasciaPair
}

// NewCatalog builds a catalog from translation table rows.
// A later row for the same variant replaces an earlier one.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	pairs := make(map[Variant]FasciaPair, len(entries))
	for i, entry := range entries {
		if entry.Colour == "" || entry.Model == "" {
			return nil, &ErrInvalidCatalog{Row: i + 1, Reason: "colour and model are required"}
		}
		if entry.Front == "" || entry.Rear == "" {
			return nil, &ErrInvalidCatalog{Row: i + 1, Reason: "front and rear items are required"}
		}
		pairs[entry.Variant] = entry.FasciaPair
	}

	return &Catalog{pairs: pairs}, nil
}

// Lookup returns the fascia pair for a variant
func (c *Catalog) Lookup(colour, model string) (FasciaPair, bool) {
	pair, ok := c.pairs[Variant{Colour: colour, Model: model}]
	return pair, ok
}

// Contains reports whether the variant is a recognised combination
func (c *Catalog) Contains(colour, model string) bool {
	_, ok := c.Lookup(colour, model)
	return ok
}

// Size returns the number of known variants
func (c *Catalog) Size() int {
	return len(c.pairs)
}

// LoadSequence computes the truck loading arrangement for a batch of orders:
// every rear item in arrival order followed by every front item in arrival order.
func (c *Catalog) LoadSequence(orders []*Order) ([]string, error) {
	rears := make([]string, 0, len(orders)*2)
	fronts := make([]string, 0, len(orders))

	for _, o := range orders {
		pair, ok := c.Lookup(o.Colour(), o.Model())
		if !ok {
			return nil, &ErrUnknownVariant{Colour: o.Colour(), Model: o.Model()}
		}
		rears = append(rears, pair.Rear)
		fronts = append(fronts, pair.Front)
	}

	return append(rears, fronts...), nil
}
