package form

import (
	"context"
	"time"
)

// DefaultCloseDelay is how long a successful wizard shows its success
// message before the completion callback runs.
const DefaultCloseDelay = 1500 * time.Millisecond

// Outcome is the result of one submission.
type Outcome struct {
	Payload any
	Err     error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Controller ties a Catalog, a Store, a Navigator and an Adapter together
// for one wizard instance. It is not safe for concurrent use; only a
// Submission's Run may execute off the owning goroutine.
type Controller struct {
	catalog *Catalog
	store   *Store
	nav     *Navigator
	adapter Adapter

	pending    bool
	errMsg     string
	successMsg string

	closeDelay time.Duration
	onDone     func(payload any)
	after      func(time.Duration, func())
}

// Option configures a Controller.
type Option func(*Controller)

// WithCloseDelay overrides DefaultCloseDelay.
func WithCloseDelay(d time.Duration) Option {
	return func(c *Controller) { c.closeDelay = d }
}

// WithOnDone sets the completion callback invoked after the close delay
// following a successful submission.
func WithOnDone(fn func(payload any)) Option {
	return func(c *Controller) { c.onDone = fn }
}

// WithScheduler replaces time.AfterFunc for running the completion callback.
func WithScheduler(after func(time.Duration, func())) Option {
	return func(c *Controller) { c.after = after }
}

// WithValues seeds the store, e.g. from the entity being edited. The seeded
// values become the defaults Reset returns to.
func WithValues(values map[string]Value) Option {
	return func(c *Controller) {
		d := c.catalog.Defaults()
		for k, v := range values {
			d[k] = v
		}
		c.store = NewStore(d)
	}
}

// New creates a controller for catalog, submitting through adapter.
func New(catalog *Catalog, adapter Adapter, opts ...Option) *Controller {
	c := &Controller{
		catalog:    catalog,
		store:      catalog.NewStore(),
		nav:        NewNavigator(catalog.Len()),
		adapter:    adapter,
		closeDelay: DefaultCloseDelay,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Catalog() *Catalog     { return c.catalog }
func (c *Controller) Store() *Store         { return c.store }
func (c *Controller) Navigator() *Navigator { return c.nav }
func (c *Controller) Pending() bool         { return c.pending }
func (c *Controller) Error() string         { return c.errMsg }
func (c *Controller) Success() string       { return c.successMsg }

// Set writes one field.
func (c *Controller) Set(name string, v Value) {
	c.store.Set(name, v)
}

// Fields returns the field names of the active section.
func (c *Controller) Fields() []string {
	return c.catalog.FieldsFor(c.nav.Index())
}

// SectionTitle returns the title of the active section.
func (c *Controller) SectionTitle() string {
	return c.catalog.Title(c.nav.Index())
}

// Next, Previous and Jump move between sections.
func (c *Controller) Next() bool      { return c.nav.Next() }
func (c *Controller) Previous() bool  { return c.nav.Previous() }
func (c *Controller) Jump(i int) bool { return c.nav.Jump(i) }

// Submission is a validated, in-flight request.
type Submission struct {
	mutate Mutation
}

// Run performs the network call. It is safe to call from another goroutine.
func (s *Submission) Run(ctx context.Context) Outcome {
	payload, err := s.mutate(ctx)
	return Outcome{Payload: payload, Err: err}
}

// Begin validates and transforms the store and marks the controller pending.
// While pending, further calls return ErrSubmitPending. A validation failure
// sets the inline error and returns it without marking pending.
func (c *Controller) Begin() (*Submission, error) {
	if c.pending {
		return nil, ErrSubmitPending
	}
	c.errMsg = ""
	c.successMsg = ""
	mutate, err := c.adapter.Prepare(c.store)
	if err != nil {
		c.errMsg = ErrorMessage(err, c.adapter.Messages().Fallback)
		return nil, err
	}
	c.pending = true
	return &Submission{mutate: mutate}, nil
}

// Finish applies an outcome. On success the store is reset, the success
// message is set and the completion callback is scheduled after the close
// delay. On failure the error message is set and the store is left intact.
func (c *Controller) Finish(o Outcome) {
	c.pending = false
	msgs := c.adapter.Messages()
	if o.Err != nil {
		c.errMsg = ErrorMessage(o.Err, msgs.Fallback)
		return
	}
	c.store.Reset()
	c.errMsg = ""
	c.successMsg = msgs.Success
	if c.onDone != nil {
		payload := o.Payload
		c.after(c.closeDelay, func() { c.onDone(payload) })
	}
}

// Submit runs Begin, the mutation and Finish synchronously.
func (c *Controller) Submit(ctx context.Context) Outcome {
	sub, err := c.Begin()
	if err != nil {
		return Outcome{Err: err}
	}
	o := sub.Run(ctx)
	c.Finish(o)
	return o
}
