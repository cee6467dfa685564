package types

// VisitRequest is the harbor entry form payload. The logging member of staff
// is not part of it: it comes from the signed-in identity.
type VisitRequest struct {
	ParticipantName string `json:"participant_name"`
	YearGroup       int    `json:"year_group"`
	PeriodSlot      int    `json:"period"`
	ReasonCode      string `json:"reason"`
}

type RelocationRequest struct {
	ParticipantName      string `json:"participant_name"`
	YearGroup            int    `json:"year_group"`
	PeriodSlot           int    `json:"period"`
	ResponsibleStaffName string `json:"responsible_staff"`
}

type EntryResponse struct {
	OK         bool   `json:"ok"`
	ID         string `json:"id"`
	Variant    string `json:"variant"`
	CreatedAt  string `json:"created_at"`
	ServerTime string `json:"server_time"`
}
