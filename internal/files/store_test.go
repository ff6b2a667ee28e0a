package files

import (
	"errors"
	"testing"

	"codelab/pkg/types"
)

func loadTwo(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Load([]types.WorkspaceFile{
		{ID: "f1", Filename: "a.js", Content: "console.log('a')"},
		{ID: "f2", Filename: "b.js", Content: "console.log('b')"},
	}, "f1")
	return s
}

func TestStore_LoadSetsActivePointer(t *testing.T) {
	s := loadTwo(t)

	active := s.Active()
	if active == nil || active.ID != "f1" {
		t.Fatalf("active = %+v, want f1", active)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestStore_LoadUnknownActiveFallsBackToFirst(t *testing.T) {
	s := NewStore()
	s.Load([]types.WorkspaceFile{
		{ID: "f1", Filename: "a.js"},
		{ID: "f2", Filename: "b.js"},
	}, "missing")

	if active := s.Active(); active == nil || active.ID != "f1" {
		t.Fatalf("active = %+v, want first file", active)
	}
}

func TestStore_AddDistinctNames(t *testing.T) {
	s := NewStore()
	s.Load(nil, "")

	names := []string{"a.js", "b.js", "c.js"}
	for _, name := range names {
		if _, err := s.Add(name); err != nil {
			t.Fatalf("Add(%q) failed: %v", name, err)
		}
	}

	all := s.All()
	if len(all) != len(names) {
		t.Fatalf("got %d files, want %d", len(all), len(names))
	}
	seen := make(map[string]bool)
	for _, f := range all {
		if seen[f.Filename] {
			t.Errorf("duplicate filename %q in set", f.Filename)
		}
		seen[f.Filename] = true
	}

	// Active pointer must always reference a member of the set.
	active := s.Active()
	if active == nil {
		t.Fatal("no active file after adds")
	}
	found := false
	for _, f := range all {
		if f.ID == active.ID {
			found = true
		}
	}
	if !found {
		t.Error("active pointer references a file outside the set")
	}
	if active.Filename != "c.js" {
		t.Errorf("active = %q, want most recently added c.js", active.Filename)
	}
}

func TestStore_AddDuplicateFilename(t *testing.T) {
	s := loadTwo(t)

	if _, err := s.Add("a.js"); !errors.Is(err, ErrDuplicateFilename) {
		t.Errorf("duplicate add: err = %v, want ErrDuplicateFilename", err)
	}
	if s.Len() != 2 {
		t.Errorf("failed add mutated the set: len = %d", s.Len())
	}
}

func TestStore_AddInvalidFilename(t *testing.T) {
	s := loadTwo(t)

	if _, err := s.Add("../escape.js"); !errors.Is(err, types.ErrInvalidFilename) {
		t.Errorf("err = %v, want ErrInvalidFilename", err)
	}
}

func TestStore_RemoveLastFileRefused(t *testing.T) {
	s := NewStore()
	s.Load([]types.WorkspaceFile{{ID: "only", Filename: "a.js"}}, "only")

	if err := s.Remove("only"); !errors.Is(err, ErrLastFile) {
		t.Fatalf("err = %v, want ErrLastFile", err)
	}
	if s.Len() != 1 {
		t.Error("failed remove mutated the set")
	}
	if active := s.Active(); active == nil || active.ID != "only" {
		t.Error("failed remove moved the active pointer")
	}
}

func TestStore_RemoveActiveReactivatesFirstRemaining(t *testing.T) {
	// load a.js, b.js -> add c.js -> delete a.js while a.js is active:
	// active becomes b.js, the first remaining in original order.
	s := loadTwo(t)
	if _, err := s.Add("c.js"); err != nil {
		t.Fatal(err)
	}
	s.SetActive("f1")

	if err := s.Remove("f1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	active := s.Active()
	if active == nil || active.Filename != "b.js" {
		t.Fatalf("active = %+v, want b.js", active)
	}
}

func TestStore_RemoveInactiveKeepsActivePointer(t *testing.T) {
	s := loadTwo(t)

	if err := s.Remove("f2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if active := s.Active(); active == nil || active.ID != "f1" {
		t.Errorf("active = %+v, want f1 untouched", active)
	}
}

func TestStore_RemoveUnknownIDIsNoop(t *testing.T) {
	s := loadTwo(t)

	if err := s.Remove("ghost"); err != nil {
		t.Errorf("unknown remove returned %v", err)
	}
	if s.Len() != 2 {
		t.Error("unknown remove mutated the set")
	}
}

func TestStore_SetActiveUnknownIDIsNoop(t *testing.T) {
	s := loadTwo(t)

	if f := s.SetActive("ghost"); f != nil {
		t.Errorf("SetActive(ghost) = %+v, want nil", f)
	}
	if active := s.Active(); active == nil || active.ID != "f1" {
		t.Error("unknown SetActive moved the pointer")
	}
}

func TestStore_SetActiveReturnsNewActiveFile(t *testing.T) {
	s := loadTwo(t)

	f := s.SetActive("f2")
	if f == nil || f.Filename != "b.js" {
		t.Fatalf("SetActive = %+v, want b.js", f)
	}
	if active := s.Active(); active.ID != "f2" {
		t.Error("pointer did not move")
	}
}

func TestStore_UpdateActiveContent(t *testing.T) {
	s := loadTwo(t)

	s.UpdateActiveContent("updated")
	if active := s.Active(); active.Content != "updated" {
		t.Errorf("content = %q, want updated", active.Content)
	}

	// Only the active file changes.
	for _, f := range s.All() {
		if f.ID == "f2" && f.Content != "console.log('b')" {
			t.Error("inactive file content mutated")
		}
	}
}

func TestStore_UpdateActiveContentEmptyStore(t *testing.T) {
	s := NewStore()
	s.UpdateActiveContent("orphan") // must not panic
	if s.Len() != 0 {
		t.Error("update on empty store created a file")
	}
}

func TestStore_AllReturnsCopies(t *testing.T) {
	s := loadTwo(t)

	all := s.All()
	all[0].Content = "tampered"

	if active := s.Active(); active.Content == "tampered" {
		t.Error("All leaked internal state")
	}
}
