package service

import (
	"context"
	"strings"

	"github.com/harborlog/server/internal/harborlog/store"
)

// StaffDirectory resolves the signed-in member of staff to the name recorded
// on harbor visits.
type StaffDirectory struct {
	store store.StaffStore
}

func NewStaffDirectory(st store.StaffStore) *StaffDirectory {
	return &StaffDirectory{store: st}
}

// DisplayName returns the directory name for email, or the email itself when
// the directory has no entry. An empty email returns ErrNoIdentity.
func (d *StaffDirectory) DisplayName(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrNoIdentity
	}
	if d == nil || d.store == nil {
		return email, nil
	}

	name, err := d.store.LookupName(ctx, email)
	if err != nil {
		return "", err
	}
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}
	return email, nil
}
