package source

import "context"

// Memory is a fixture-backed Source for tests and offline previews. It
// returns products in insertion order and resolves terms from a static set.
type Memory struct {
	products []*Product
	byID     map[int64]*Product
	terms    map[int64]*CategoryTerm
}

// NewMemory creates a Memory source from the given products and terms. All
// given products are listed by Products in insertion order, so fixtures decide
// whether variations appear standalone or only through their parent.
func NewMemory(products []*Product, terms []CategoryTerm) *Memory {
	m := &Memory{
		products: products,
		byID:     make(map[int64]*Product, len(products)),
		terms:    make(map[int64]*CategoryTerm, len(terms)),
	}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	for i := range terms {
		t := terms[i]
		m.terms[t.ID] = &t
	}
	return m
}

func (m *Memory) Products(ctx context.Context) ([]*Product, error) {
	return m.products, nil
}

func (m *Memory) Product(ctx context.Context, id int64) (*Product, error) {
	return m.byID[id], nil
}

func (m *Memory) CategoryTerm(id int64) (*CategoryTerm, bool) {
	t, ok := m.terms[id]
	return t, ok
}
