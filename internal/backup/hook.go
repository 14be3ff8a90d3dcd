package backup

import (
	"os"
	"sync"

	"github.com/floorper/floorper/internal/errors"
)

// Safeguard snapshots a restore target before it is overwritten. Each
// target is snapshotted at most once per Safeguard, so repeated restores
// into the same profile within a session keep the pre-session state.
type Safeguard struct {
	mgr *Manager

	mu    sync.Mutex
	onces map[string]*sync.Once
}

// NewSafeguard returns a Safeguard that stores snapshots through mgr.
func NewSafeguard(mgr *Manager) *Safeguard {
	return &Safeguard{
		mgr:   mgr,
		onces: make(map[string]*sync.Once),
	}
}

// EnsureBackedUp archives target under browserID and profileName unless it
// was already archived by this Safeguard. It returns the archive path, or
// "" when no snapshot was taken: target does not exist yet, or a snapshot
// already exists.
//
// A failed snapshot is forgotten so the caller may retry.
func (s *Safeguard) EnsureBackedUp(target, browserID, profileName string) (string, error) {
	if target == "" {
		return "", nil
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return "", nil
	}

	s.mu.Lock()
	once, exists := s.onces[target]
	if !exists {
		once = &sync.Once{}
		s.onces[target] = once
	}
	s.mu.Unlock()

	var (
		archivePath string
		snapErr     error
	)
	once.Do(func() {
		var res *CreateResult
		res, snapErr = s.mgr.Create(target, browserID, profileName)
		if snapErr != nil {
			s.mu.Lock()
			delete(s.onces, target)
			s.mu.Unlock()
			return
		}
		archivePath = res.Path
	})

	if snapErr != nil {
		return "", errors.Wrapf(snapErr, "snapshotting %s before restore", target)
	}
	return archivePath, nil
}

// Reset forgets every snapshot taken so far.
func (s *Safeguard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onces = make(map[string]*sync.Once)
}
