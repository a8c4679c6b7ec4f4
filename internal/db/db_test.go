package db

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/bastion/internal/models"
)

func TestOpenCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "activity.db")); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	v, err := db.version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Record(&models.ActivityEntry{Action: "create", Entity: "org", EntityID: "acme", OK: true}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	got, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
}

func TestRecordAndRecent(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	n := 0
	idGenerator = func() string {
		n++
		return fmt.Sprintf("act-%d", n)
	}
	defer func() { idGenerator = defaultGenerateID }()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.ActivityEntry{
		{Timestamp: base, Action: "create", Entity: "org", EntityID: "acme", OK: true, Message: "Organization created"},
		{Timestamp: base.Add(time.Minute), Action: "update", Entity: "org", EntityID: "acme", OK: false, Message: "Domain in use"},
		{Timestamp: base.Add(2 * time.Minute), Action: "create", Entity: "assessment", EntityID: "ASM-1", OK: true},
	}
	for i := range entries {
		if err := db.Record(&entries[i]); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if entries[0].ID != "act-1" {
		t.Errorf("ID = %q, want act-1", entries[0].ID)
	}

	got, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].EntityID != "ASM-1" || got[1].Action != "update" {
		t.Errorf("unexpected order: %+v", got)
	}
	if got[1].OK {
		t.Error("OK should be false for the failed update")
	}
	if got[1].Message != "Domain in use" {
		t.Errorf("Message = %q", got[1].Message)
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Timestamp = %v", got[0].Timestamp)
	}

	forOrg, err := db.ForEntity("org", "acme")
	if err != nil {
		t.Fatalf("ForEntity failed: %v", err)
	}
	if len(forOrg) != 2 {
		t.Errorf("ForEntity returned %d rows, want 2", len(forOrg))
	}
}

func TestRecordDefaults(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	e := models.ActivityEntry{Action: "delete", Entity: "org", EntityID: "globex", OK: true}
	if err := db.Record(&e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if e.ID == "" {
		t.Error("ID not set")
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestPrune(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	now := time.Now()
	old := models.ActivityEntry{Timestamp: now.Add(-48 * time.Hour), Action: "create", Entity: "org", OK: true}
	fresh := models.ActivityEntry{Timestamp: now, Action: "create", Entity: "org", OK: true}
	for _, e := range []*models.ActivityEntry{&old, &fresh} {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := db.Prune(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	got, _ := db.Recent(0)
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Errorf("unexpected rows after prune: %+v", got)
	}
}

func TestRecordRejectsUnknownCombination(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if err := db.Record(&models.ActivityEntry{Action: "delete", Entity: "assessment", EntityID: "ASM-1"}); err == nil {
		t.Error("expected an error for deleting an assessment")
	}
	if err := db.Record(&models.ActivityEntry{Action: "profile", Entity: "org", EntityID: "acme", OK: true}); err != nil {
		t.Errorf("profile run on org: %v", err)
	}
	got, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Recent returned %d rows, want 1", len(got))
	}
}
