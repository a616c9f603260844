package places

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/peatergripin/ecocommute/internal/geo"
)

// Provider is what a Field needs from the Places API
type Provider interface {
	Autocomplete(ctx context.Context, input, sessionToken string) ([]Suggestion, error)
	Location(ctx context.Context, placeID, sessionToken string) (*geo.Point, error)
}

// Field is the suggestion state of one place input. Every query takes a
// new request token; a response is applied only if its token is still the
// latest one issued, so slow stale responses are dropped.
type Field struct {
	provider Provider

	mu          sync.Mutex
	token       uint64
	session     string
	suggestions []Suggestion
}

// NewField creates a field with an empty suggestion list
func NewField(p Provider) *Field {
	return &Field{provider: p, session: uuid.NewString()}
}

// Query looks up suggestions for input. applied is false when a newer
// query or selection superseded this one; the results are then discarded
// and no error is reported.
func (f *Field) Query(ctx context.Context, input string) (suggestions []Suggestion, applied bool, err error) {
	token, session := f.begin()

	results, err := f.provider.Autocomplete(ctx, input, session)

	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.token {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	f.suggestions = results
	return results, true, nil
}

// Select resolves a chosen suggestion's coordinates. Pending queries are
// invalidated, the suggestion list is cleared and the billing session
// rotated.
func (f *Field) Select(ctx context.Context, s Suggestion) (*geo.Point, error) {
	_, session := f.begin()

	f.mu.Lock()
	f.suggestions = nil
	f.session = uuid.NewString()
	f.mu.Unlock()

	return f.provider.Location(ctx, s.PlaceID, session)
}

// Clear drops the current suggestions and invalidates pending queries
func (f *Field) Clear() {
	f.begin()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = nil
}

// Suggestions returns the currently applied suggestions
func (f *Field) Suggestions() []Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Suggestion(nil), f.suggestions...)
}

func (f *Field) begin() (uint64, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token++
	return f.token, f.session
}
