package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRecords(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []domain.RunRecord{
		{
			Timestamp:  base,
			SessionID:  "s1",
			ProposalID: "p1",
			Task:       "Create an empty file named notes.txt",
			Command:    "touch notes.txt",
			Approved:   true,
			State:      domain.StateVerified,
			Executed:   true,
			Verified:   true,
			DurationMS: 12,
		},
		{
			Timestamp:  base.Add(time.Minute),
			SessionID:  "s1",
			ProposalID: "p2",
			Task:       "Delete everything",
			Command:    "rm -rf /",
			Approved:   false,
			Category:   domain.CategorySafety,
			Reasoning:  "destructive removal of the filesystem root",
			State:      domain.StateRejected,
		},
	}
	for _, run := range runs {
		if err := store.Save(run); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].ProposalID != "p2" || got[1].ProposalID != "p1" {
		t.Errorf("order = %s, %s; want p2, p1", got[0].ProposalID, got[1].ProposalID)
	}
	if !got[1].Approved || !got[1].Verified || !got[1].Executed {
		t.Errorf("verified run lost its flags: %+v", got[1])
	}
	if got[0].Approved || got[0].Category != domain.CategorySafety {
		t.Errorf("rejection lost its verdict: %+v", got[0])
	}
	if got[0].State != domain.StateRejected {
		t.Errorf("state = %q, want %q", got[0].State, domain.StateRejected)
	}
}

func TestRecordsLimitAndSearch(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, cmd := range []string{"touch a.txt", "mkdir archive", "grep orange fruit.txt"} {
		err := store.Save(domain.RunRecord{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Task:      "task",
			Command:   cmd,
			Approved:  true,
			State:     domain.StateExecuted,
			Executed:  true,
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	limited, err := store.Records(2, "")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d records", len(limited))
	}

	found, err := store.Records(0, "archive")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(found) != 1 || found[0].Command != "mkdir archive" {
		t.Errorf("search = %+v, want the mkdir run", found)
	}
}

func TestNopLedger(t *testing.T) {
	var ledger NopLedger
	if err := ledger.Save(domain.RunRecord{Command: "ls"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	records, err := ledger.Records(10, "")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("NopLedger returned %d records", len(records))
	}
}
