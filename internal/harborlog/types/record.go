package types

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownVariant = errors.New("unknown log variant")

// Variant names one of the two sign-in logs.
type Variant string

const (
	VariantRelocation Variant = "relocation"
	VariantHarbor     Variant = "harbor"
)

// Variants lists every log in a stable order.
var Variants = []Variant{VariantRelocation, VariantHarbor}

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantRelocation:
		return VariantRelocation, nil
	case VariantHarbor:
		return VariantHarbor, nil
	}
	return "", ErrUnknownVariant
}

// Table is the storage table backing the variant.
func (v Variant) Table() string {
	if v == VariantHarbor {
		return "harbor_visits"
	}
	return "relocations"
}

// TimestampLayout renders created_at in exports and JSON listings.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Field is one named value of a record, in export column order.
// A nil Value renders as an empty cell.
type Field struct {
	Name  string
	Value any
}

// Record is the minimal shape shared by both logs. The report engine only
// depends on this interface.
type Record interface {
	RecordID() string
	CreatedAt() time.Time
	Participant() string
	Year() int
	Period() int
	Fields() []Field
}

// Base holds the fields common to every sign-in event. Zero YearGroup or
// PeriodSlot means the value was not recorded.
type Base struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"created_at"`
	ParticipantName string    `json:"participant_name"`
	YearGroup       int       `json:"year_group,omitempty"`
	PeriodSlot      int       `json:"period,omitempty"`
}

func (b Base) RecordID() string     { return b.ID }
func (b Base) CreatedAt() time.Time { return b.Timestamp }
func (b Base) Participant() string  { return b.ParticipantName }
func (b Base) Year() int            { return b.YearGroup }
func (b Base) Period() int          { return b.PeriodSlot }

func (b Base) baseFields() []Field {
	var created any
	if !b.Timestamp.IsZero() {
		created = b.Timestamp.Format(TimestampLayout)
	}
	return []Field{
		{Name: "id", Value: b.ID},
		{Name: "created_at", Value: created},
		{Name: "participant_name", Value: b.ParticipantName},
		{Name: "year_group", Value: optionalInt(b.YearGroup)},
		{Name: "period", Value: optionalInt(b.PeriodSlot)},
	}
}

// RelocationRecord is a relocation-room sign-in: a student moved out of a
// lesson by a member of staff.
type RelocationRecord struct {
	Base
	ResponsibleStaffName string `json:"responsible_staff,omitempty"`
}

func (r RelocationRecord) Fields() []Field {
	return append(r.baseFields(), Field{Name: "responsible_staff", Value: r.ResponsibleStaffName})
}

// VisitRecord is a harbor visit logged by the signed-in member of staff.
type VisitRecord struct {
	Base
	ReasonCode       string `json:"reason,omitempty"`
	LoggingStaffName string `json:"logging_staff,omitempty"`
}

func (r VisitRecord) Fields() []Field {
	return append(r.baseFields(),
		Field{Name: "reason", Value: r.ReasonCode},
		Field{Name: "logging_staff", Value: r.LoggingStaffName},
	)
}

// VariantOf reports which log a record belongs to.
func VariantOf(r Record) Variant {
	switch r.(type) {
	case VisitRecord, *VisitRecord:
		return VariantHarbor
	}
	return VariantRelocation
}

func optionalInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
