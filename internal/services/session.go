package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
)

// Session ties a pipeline run (or a batch of runs) to one sandbox root.
// Closing the session purges the root; records written to the ledger keep
// the session ID so runs can be grouped afterwards.
type Session struct {
	ID  string
	Box *sandbox.Sandbox
}

// NewSession creates a fresh sandbox under parent (the system temp
// directory when empty) and assigns it a session ID.
func NewSession(parent string) (*Session, error) {
	box, err := sandbox.New(parent)
	if err != nil {
		return nil, fmt.Errorf("create session sandbox: %w", err)
	}
	return &Session{ID: uuid.NewString(), Box: box}, nil
}

// Close purges the sandbox. Safe to call once; later calls report the
// sandbox as already purged.
func (s *Session) Close() error {
	return s.Box.Purge()
}
