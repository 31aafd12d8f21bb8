// Package store holds stamped documents on disk for token-based pickup.
//
// Embedded web views cannot save in-memory downloads, so the handler parks
// the stamped bytes here and redirects the client to a one-shot download
// URL keyed by an opaque token. Artifacts expire after a TTL; a sweeper
// removes stale files so the output directory does not grow unbounded.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-paperstamp/internal/utils"
)

// Artifact is one stamped document awaiting pickup.
type Artifact struct {
	Token     string
	Filename  string
	Path      string
	CreatedAt time.Time
}

// Store tracks artifacts in memory and their bytes on disk.
type Store struct {
	dir string
	ttl time.Duration

	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// New creates a store writing under dir. Artifacts older than ttl are
// eligible for sweeping.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &Store{
		dir:       dir,
		ttl:       ttl,
		artifacts: make(map[string]*Artifact),
	}, nil
}

// Put writes data to disk and returns the pickup token.
func (s *Store) Put(filename string, data []byte) (string, error) {
	token := utils.GenerateUUID()
	path := filepath.Join(s.dir, token+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store: write artifact: %w", err)
	}

	s.mu.Lock()
	s.artifacts[token] = &Artifact{
		Token:     token,
		Filename:  filename,
		Path:      path,
		CreatedAt: time.Now(),
	}
	s.mu.Unlock()
	return token, nil
}

// Get looks up an artifact by token.
func (s *Store) Get(token string) (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[token]
	return a, ok
}

// Delete removes the artifact and its file. Missing tokens are a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	a, ok := s.artifacts[token]
	delete(s.artifacts, token)
	s.mu.Unlock()
	if ok {
		os.Remove(a.Path)
	}
}

// Sweep deletes artifacts older than the TTL and returns how many went.
func (s *Store) Sweep() int {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var stale []*Artifact
	for token, a := range s.artifacts {
		if a.CreatedAt.Before(cutoff) {
			stale = append(stale, a)
			delete(s.artifacts, token)
		}
	}
	s.mu.Unlock()

	for _, a := range stale {
		os.Remove(a.Path)
	}
	return len(stale)
}

// Len reports how many artifacts are currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}
