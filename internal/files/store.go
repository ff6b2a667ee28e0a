package files

import (
	"sync"

	"github.com/google/uuid"

	"codelab/pkg/types"
)

// Store holds the workspace's ordered file set and the single active
// pointer. Invariant: whenever the set is non-empty, activeID references a
// member of the set. All mutations are synchronous and last-write-wins.
type Store struct {
	files    []*types.WorkspaceFile // insertion order preserved
	activeID string
	mu       sync.RWMutex
}

// NewStore creates an empty file store. Load must run before edits.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the entire set and active pointer with canonical state,
// typically the initial fetch. An activeID not present in the set falls
// back to the first file.
func (s *Store) Load(fileSet []types.WorkspaceFile, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = make([]*types.WorkspaceFile, 0, len(fileSet))
	for i := range fileSet {
		f := fileSet[i]
		s.files = append(s.files, &f)
	}

	s.activeID = ""
	for _, f := range s.files {
		if f.ID == activeID {
			s.activeID = activeID
			break
		}
	}
	if s.activeID == "" && len(s.files) > 0 {
		s.activeID = s.files[0].ID
	}
}

// UpdateActiveContent replaces the active file's content in place.
// No-op when nothing is active.
func (s *Store) UpdateActiveContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.ID == s.activeID {
			f.Content = content
			return
		}
	}
}

// Add appends a new empty file with a generated identity and makes it
// active. Fails on a duplicate filename or an invalid one.
func (s *Store) Add(filename string) (*types.WorkspaceFile, error) {
	if !types.IsValidFilename(filename) {
		return nil, types.ErrInvalidFilename
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.Filename == filename {
			return nil, ErrDuplicateFilename
		}
	}

	f := &types.WorkspaceFile{
		ID:       uuid.New().String(),
		Filename: filename,
		Content:  "",
	}
	s.files = append(s.files, f)
	s.activeID = f.ID

	copied := *f
	return &copied, nil
}

// Remove deletes a file by id. Deleting the last file is refused; deleting
// the active file re-points the active id at the first remaining file in
// insertion order. An unknown id is a silent no-op.
func (s *Store) Remove(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.files) == 1 {
		return ErrLastFile
	}

	idx := -1
	for i, f := range s.files {
		if f.ID == fileID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	s.files = append(s.files[:idx], s.files[idx+1:]...)
	if s.activeID == fileID {
		s.activeID = s.files[0].ID
	}
	return nil
}

// SetActive moves the active pointer. Unknown ids are a silent no-op and
// return nil; otherwise the newly active file is returned so the caller
// can rebaseline its churn tracking.
func (s *Store) SetActive(fileID string) *types.WorkspaceFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.ID == fileID {
			s.activeID = fileID
			copied := *f
			return &copied
		}
	}
	return nil
}

// Active returns a copy of the active file, or nil on an empty store.
func (s *Store) Active() *types.WorkspaceFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.files {
		if f.ID == s.activeID {
			copied := *f
			return &copied
		}
	}
	return nil
}

// All returns copies of every file in insertion order.
func (s *Store) All() []types.WorkspaceFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.WorkspaceFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, *f)
	}
	return out
}

// Len returns the number of files in the set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
