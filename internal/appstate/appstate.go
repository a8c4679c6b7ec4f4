// Package appstate holds the data the console has fetched from the platform
// and the refresh signals that tell views when to fetch it again.
package appstate

import (
	"slices"
	"sync"

	"github.com/marcus/bastion/internal/models"
)

// Tag names a group of cached data.
type Tag string

const (
	TagOrgs        Tag = "orgs"
	TagOrg         Tag = "org"
	TagAllOrgs     Tag = "all-orgs"
	TagAssessments Tag = "assessments"
	TagProfile     Tag = "profile"
)

// State is shared by reference between the console's views. All methods are
// safe for concurrent use.
type State struct {
	mu sync.RWMutex

	scope       *models.OrgScope
	selected    *models.Organization
	allOrgs     []models.Organization
	assessments []models.Assessment
	checkoutURL string

	versions map[Tag]uint64
	subs     []chan Tag
}

// New returns an empty State.
func New() *State {
	return &State{versions: make(map[Tag]uint64)}
}

// Scope returns the cached GET /orgs answer, or nil.
func (s *State) Scope() *models.OrgScope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

// SetScope caches the GET /orgs answer.
func (s *State) SetScope(scope *models.OrgScope) {
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()
}

// Selected returns the organization shown in the detail view, or nil.
func (s *State) Selected() *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelected caches the organization shown in the detail view.
func (s *State) SetSelected(org *models.Organization) {
	s.mu.Lock()
	s.selected = org
	s.mu.Unlock()
}

// AllOrgs returns the cached administrator listing.
func (s *State) AllOrgs() []models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allOrgs)
}

// SetAllOrgs caches the administrator listing.
func (s *State) SetAllOrgs(orgs []models.Organization) {
	s.mu.Lock()
	s.allOrgs = slices.Clone(orgs)
	s.mu.Unlock()
}

// Assessments returns the cached assessments.
func (s *State) Assessments() []models.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.assessments)
}

// AddAssessment records an assessment created in this run.
func (s *State) AddAssessment(a models.Assessment) {
	s.mu.Lock()
	s.assessments = append(s.assessments, a)
	s.mu.Unlock()
}

// CheckoutURL returns the last checkout URL.
func (s *State) CheckoutURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkoutURL
}

// SetCheckoutURL stores the last checkout URL.
func (s *State) SetCheckoutURL(u string) {
	s.mu.Lock()
	s.checkoutURL = u
	s.mu.Unlock()
}

// Version returns the current version of tag.
func (s *State) Version(tag Tag) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[tag]
}

// Invalidate bumps the version of each tag and notifies subscribers.
// Subscribers that are not ready to receive miss the signal.
func (s *State) Invalidate(tags ...Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tags {
		s.versions[t]++
	}
	for _, t := range tags {
		for _, ch := range s.subs {
			select {
			case ch <- t:
			default:
			}
		}
	}
}

// Pending reports whether tag changed since the view saw version seen.
func (s *State) Pending(tag Tag, seen uint64) bool {
	return s.Version(tag) != seen
}

// Subscribe returns a buffered channel receiving invalidated tags.
func (s *State) Subscribe() <-chan Tag {
	ch := make(chan Tag, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (s *State) Unsubscribe(ch <-chan Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			close(c)
			s.subs = slices.Delete(s.subs, i, i+1)
			return
		}
	}
}

// AfterOrgMutation invalidates what an organization create, update or
// delete makes stale.
func (s *State) AfterOrgMutation() {
	s.Invalidate(TagOrgs, TagOrg, TagAllOrgs)
}
