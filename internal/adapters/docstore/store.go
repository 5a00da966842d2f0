// Package docstore defines the document-store capability the game consumes
// and an in-memory implementation of it.
package docstore

import (
	"context"
	"fmt"
)

// Document is one schemaless record. The "id" field holds its identity.
type Document map[string]any

// IDField is the document field that carries the id.
const IDField = "id"

// ID returns the document id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone copies the document, including nested maps and slices.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Direction orders query results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter keeps documents whose Field compares to Value under Op. Field may be
// a dotted path into nested maps.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// OrderBy sorts results by Field. Documents without the field are excluded.
type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction,omitempty"`
}

// Query selects documents from one collection. Limit 0 means no limit.
type Query struct {
	Collection string   `json:"-"`
	Filters    []Filter `json:"filters,omitempty"`
	OrderBy    *OrderBy `json:"order_by,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Validate reports malformed queries.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter without field", ErrInvalidQuery)
		}
		if !f.Op.valid() {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.OrderBy != nil {
		if q.OrderBy.Field == "" {
			return fmt.Errorf("%w: order without field", ErrInvalidQuery)
		}
		switch q.OrderBy.Direction {
		case "", Asc, Desc:
		default:
			return fmt.Errorf("%w: unknown direction %q", ErrInvalidQuery, q.OrderBy.Direction)
		}
	}
	return nil
}

// Descending reports whether the query orders from high to low.
func (q Query) Descending() bool {
	return q.OrderBy != nil && q.OrderBy.Direction == Desc
}

// Store reads and appends documents.
type Store interface {
	// Query returns matching documents, ordered and limited as requested.
	Query(ctx context.Context, q Query) ([]Document, error)
	// Insert appends doc to the collection and returns its id. A document
	// without an id is assigned one.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
}

// Subscriber streams documents inserted into a collection after the call.
// The channel is closed when ctx ends or the store closes.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string) (<-chan Document, error)
}
