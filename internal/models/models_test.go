package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// TestOrgScopeManaged tests decoding the managed-provider shape
func TestOrgScopeManaged(t *testing.T) {
	body := `{"managed_org":{"client_name":"mssp","orgName":"MSSP"},"client_orgs":[{"client_name":"acme","orgName":"Acme"},{"client_name":"globex","orgName":"Globex"}]}`

	var scope OrgScope
	if err := json.Unmarshal([]byte(body), &scope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if scope.Kind != ScopeManaged {
		t.Fatalf("Kind = %v, want managed", scope.Kind)
	}
	if scope.Org == nil || scope.Org.ClientName != "mssp" {
		t.Errorf("Org = %+v, want mssp", scope.Org)
	}
	if len(scope.Clients) != 2 {
		t.Fatalf("Clients = %d, want 2", len(scope.Clients))
	}

	orgs := scope.Orgs()
	if len(orgs) != 3 || orgs[0].ClientName != "mssp" || orgs[2].ClientName != "globex" {
		t.Errorf("Orgs() = %+v", orgs)
	}
	if o, ok := scope.Find("globex"); !ok || o.OrgName != "Globex" {
		t.Errorf("Find(globex) = %+v, %v", o, ok)
	}
	if _, ok := scope.Find("nope"); ok {
		t.Error("Find(nope) should miss")
	}
}

// TestOrgScopeSingle tests decoding the single-org shape
func TestOrgScopeSingle(t *testing.T) {
	var scope OrgScope
	if err := json.Unmarshal([]byte(`{"org":{"client_name":"acme","orgName":"Acme"}}`), &scope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if scope.Kind != ScopeSingle {
		t.Errorf("Kind = %v, want single", scope.Kind)
	}
	if len(scope.Clients) != 0 {
		t.Errorf("Clients = %d, want 0", len(scope.Clients))
	}
}

// TestOrgScopeUnknown tests that neither shape is rejected
func TestOrgScopeUnknown(t *testing.T) {
	var scope OrgScope
	err := json.Unmarshal([]byte(`{"orgs":[]}`), &scope)
	if !errors.Is(err, ErrUnknownScope) {
		t.Errorf("err = %v, want ErrUnknownScope", err)
	}
}

// TestOrgScopeRoundTrip tests that marshalling keeps the tag
func TestOrgScopeRoundTrip(t *testing.T) {
	for _, kind := range []ScopeKind{ScopeSingle, ScopeManaged} {
		in := OrgScope{Kind: kind, Org: &Organization{ClientName: "x"}}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out OrgScope
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if out.Kind != kind {
			t.Errorf("kind %v came back as %v", kind, out.Kind)
		}
	}
}

// TestUpdateOrgRequestPartial tests that nil fields are omitted and left alone
func TestUpdateOrgRequestPartial(t *testing.T) {
	sector := "Finance"
	req := UpdateOrgRequest{Sector: &sector}
	data, _ := json.Marshal(req)
	if string(data) != `{"sector":"Finance"}` {
		t.Errorf("json = %s", data)
	}

	org := Organization{Sector: "Retail", HomeURL: "https://acme.com"}
	req.Apply(&org)
	if org.Sector != "Finance" || org.HomeURL != "https://acme.com" {
		t.Errorf("Apply: %+v", org)
	}
	if req.IsEmpty() {
		t.Error("IsEmpty should be false")
	}
	if !(UpdateOrgRequest{}).IsEmpty() {
		t.Error("zero request should be empty")
	}
}

// TestCreateLEOrgRequestFlattens tests the embedded request encodes inline
func TestCreateLEOrgRequestFlattens(t *testing.T) {
	req := CreateLEOrgRequest{
		CreateOrgRequest: CreateOrgRequest{OrgName: "Acme", OrgDomain: "acme.com"},
		EmployeeCount:    120,
	}
	var m map[string]any
	data, _ := json.Marshal(req)
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["orgName"] != "Acme" || m["employeeCount"] != float64(120) {
		t.Errorf("json = %s", data)
	}
}

// TestProfileStateTerminal tests terminal states
func TestProfileStateTerminal(t *testing.T) {
	tests := map[ProfileState]bool{
		ProfileQueued:    false,
		ProfileRunning:   false,
		ProfileCompleted: true,
		ProfileFailed:    true,
	}
	for state, want := range tests {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}

// TestDurationJSON tests string and numeric duration forms
func TestDurationJSON(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(`{"poll_interval":"3s","request_timeout":1.5}`), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if time.Duration(cfg.PollInterval) != 3*time.Second {
		t.Errorf("PollInterval = %v", time.Duration(cfg.PollInterval))
	}
	if time.Duration(cfg.RequestTimeout) != 1500*time.Millisecond {
		t.Errorf("RequestTimeout = %v", time.Duration(cfg.RequestTimeout))
	}
	data, _ := json.Marshal(cfg)
	if string(data) != `{"poll_interval":"3s","request_timeout":"1.5s"}` {
		t.Errorf("json = %s", data)
	}
}
