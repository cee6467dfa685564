package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

var (
	ErrMissingParticipant = errors.New("participant_name is required")
	ErrInvalidYear        = errors.New("year_group is not a known year group")
	ErrInvalidPeriod      = errors.New("period is not a known period")
	ErrInvalidReason      = errors.New("reason is not a known visit reason")
	ErrMissingStaff       = errors.New("responsible_staff is required")
	ErrNoIdentity         = errors.New("signed-in staff identity is required")
)

// EntryService validates sign-in forms and appends them to the logs.
type EntryService struct {
	records   store.RecordStore
	directory *StaffDirectory
	vocab     vocab.Vocabulary
}

func NewEntryService(records store.RecordStore, dir *StaffDirectory, v vocab.Vocabulary) *EntryService {
	if v.YearGroups == nil && v.Periods == nil {
		v = vocab.Default()
	}
	return &EntryService{records: records, directory: dir, vocab: v}
}

// RecordVisit logs a harbor visit on behalf of the signed-in staffEmail.
func (s *EntryService) RecordVisit(ctx context.Context, req types.VisitRequest, staffEmail string) (types.EntryResponse, error) {
	name := strings.TrimSpace(req.ParticipantName)
	if name == "" {
		return types.EntryResponse{}, ErrMissingParticipant
	}
	if !s.vocab.HasYear(req.YearGroup) {
		return types.EntryResponse{}, ErrInvalidYear
	}
	if !s.vocab.HasPeriod(req.PeriodSlot) {
		return types.EntryResponse{}, ErrInvalidPeriod
	}
	reason := strings.TrimSpace(req.ReasonCode)
	if !s.vocab.HasReason(reason) {
		return types.EntryResponse{}, ErrInvalidReason
	}

	staff, err := s.directory.DisplayName(ctx, staffEmail)
	if err != nil {
		return types.EntryResponse{}, err
	}

	return s.append(ctx, types.VisitRecord{
		Base: types.Base{
			ParticipantName: name,
			YearGroup:       req.YearGroup,
			PeriodSlot:      req.PeriodSlot,
		},
		ReasonCode:       reason,
		LoggingStaffName: staff,
	})
}

func (s *EntryService) RecordRelocation(ctx context.Context, req types.RelocationRequest) (types.EntryResponse, error) {
	name := strings.TrimSpace(req.ParticipantName)
	if name == "" {
		return types.EntryResponse{}, ErrMissingParticipant
	}
	if !s.vocab.HasYear(req.YearGroup) {
		return types.EntryResponse{}, ErrInvalidYear
	}
	if !s.vocab.HasPeriod(req.PeriodSlot) {
		return types.EntryResponse{}, ErrInvalidPeriod
	}
	staff := strings.TrimSpace(req.ResponsibleStaffName)
	if staff == "" {
		return types.EntryResponse{}, ErrMissingStaff
	}

	return s.append(ctx, types.RelocationRecord{
		Base: types.Base{
			ParticipantName: name,
			YearGroup:       req.YearGroup,
			PeriodSlot:      req.PeriodSlot,
		},
		ResponsibleStaffName: staff,
	})
}

func (s *EntryService) append(ctx context.Context, rec types.Record) (types.EntryResponse, error) {
	stored, err := s.records.Append(ctx, rec)
	if err != nil {
		return types.EntryResponse{}, err
	}
	return types.EntryResponse{
		OK:         true,
		ID:         stored.RecordID(),
		Variant:    string(types.VariantOf(stored)),
		CreatedAt:  stored.CreatedAt().UTC().Format(types.TimestampLayout),
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}
