// Package query holds the pagination and filter primitives shared by the
// post, comment and user listings.
package query

import (
	"slices"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	MaxLimit = 100

	DefaultPostLimit        = 10
	DefaultUserLimit        = 10
	DefaultPostCommentLimit = 50
	DefaultUserCommentLimit = 20
)

// Page is a clamped limit/offset pair.
type Page struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// NewPage clamps limit to [1, MaxLimit] and offset to [0, ∞).
// A non-positive limit means "not supplied" and falls back to def.
func NewPage(limit, offset int64, def int64) Page {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// ParsePage builds a Page from raw query-string values. Unparseable values
// are treated as absent.
func ParsePage(rawLimit, rawOffset string, def int64) Page {
	limit, err := strconv.ParseInt(rawLimit, 10, 64)
	if err != nil {
		limit = 0
	}
	offset, err := strconv.ParseInt(rawOffset, 10, 64)
	if err != nil {
		offset = 0
	}
	return NewPage(limit, offset, def)
}

// Predicate is a single equality test. A nil Value matches a null or missing field.
type Predicate struct {
	Key   string
	Value any
}

// Filter is a conjunction of equality predicates.
type Filter struct {
	preds []Predicate
}

// NewFilter returns an empty filter, which matches everything.
func NewFilter() Filter {
	return Filter{}
}

// Eq adds key == value. An empty value is omitted from the filter.
func (f Filter) Eq(key, value string) Filter {
	if value == "" {
		return f
	}
	return f.with(Predicate{Key: key, Value: value})
}

// Null adds key == null.
func (f Filter) Null(key string) Filter {
	return f.with(Predicate{Key: key})
}

// Has reports whether key is constrained by the filter.
func (f Filter) Has(key string) bool {
	return slices.ContainsFunc(f.preds, func(p Predicate) bool { return p.Key == key })
}

func (f Filter) with(p Predicate) Filter {
	preds := make([]Predicate, 0, len(f.preds)+1)
	for _, existing := range f.preds {
		if existing.Key != p.Key {
			preds = append(preds, existing)
		}
	}
	return Filter{preds: append(preds, p)}
}

// Predicates returns the filter's predicates in insertion order.
func (f Filter) Predicates() []Predicate {
	return slices.Clone(f.preds)
}

// BSON renders the filter as a Mongo query document.
func (f Filter) BSON() bson.D {
	doc := bson.D{}
	for _, p := range f.preds {
		doc = append(doc, bson.E{Key: p.Key, Value: p.Value})
	}
	return doc
}

// Match evaluates the filter against a document whose fields are exposed by
// field. Array fields match when they contain the value, as in Mongo.
func (f Filter) Match(field func(key string) any) bool {
	for _, p := range f.preds {
		if !matches(field(p.Key), p.Value) {
			return false
		}
	}
	return true
}

func matches(got, want any) bool {
	if want == nil {
		switch v := got.(type) {
		case nil:
			return true
		case *string:
			return v == nil
		case string:
			return v == ""
		}
		return false
	}
	switch v := got.(type) {
	case []string:
		s, ok := want.(string)
		return ok && slices.Contains(v, s)
	case *string:
		return v != nil && *v == want
	}
	return got == want
}
