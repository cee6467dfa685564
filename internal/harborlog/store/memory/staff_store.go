package memory

import (
	"context"
	"strings"
	"sync"
)

// StaffStore maps lowercased staff emails to display names.
type StaffStore struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewStaffStore builds a directory from email → name pairs.
func NewStaffStore(entries map[string]string) *StaffStore {
	names := make(map[string]string, len(entries))
	for email, name := range entries {
		email = strings.ToLower(strings.TrimSpace(email))
		name = strings.TrimSpace(name)
		if email != "" && name != "" {
			names[email] = name
		}
	}
	return &StaffStore{names: names}
}

func (s *StaffStore) LookupName(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[strings.ToLower(strings.TrimSpace(email))], nil
}
