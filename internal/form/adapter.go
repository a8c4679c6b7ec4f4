package form

import (
	"context"
	"strings"
)

// Mutation is a prepared request. It runs outside the event loop and must
// not touch the Store.
type Mutation func(ctx context.Context) (any, error)

// Messages are the texts a submission surfaces.
type Messages struct {
	Success  string // transient message after a successful call
	Fallback string // shown when a failure carries no server message
}

// Adapter is the entity-specific half of a submission: it validates the
// store, transforms it into the request shape and binds exactly one
// external mutation.
type Adapter interface {
	Prepare(s *Store) (Mutation, error)
	Messages() Messages
}

// Required names a field that must be non-empty before submission.
type Required struct {
	Field   string
	Message string
}

// Strategy is the stock Adapter: it checks Required fields in order and
// then hands the store to Build.
type Strategy struct {
	Required []Required
	Build    func(s *Store) (Mutation, error)
	Msgs     Messages
}

// Prepare implements Adapter.
func (st Strategy) Prepare(s *Store) (Mutation, error) {
	if err := CheckRequired(s, st.Required...); err != nil {
		return nil, err
	}
	return st.Build(s)
}

// Messages implements Adapter.
func (st Strategy) Messages() Messages {
	return st.Msgs
}

// CheckRequired returns a ValidationError for the first required field whose
// value is blank.
func CheckRequired(s *Store, fields ...Required) error {
	for _, r := range fields {
		if strings.TrimSpace(s.String(r.Field)) == "" {
			msg := r.Message
			if msg == "" {
				msg = r.Field + " is required"
			}
			return &ValidationError{Field: r.Field, Message: msg}
		}
	}
	return nil
}
