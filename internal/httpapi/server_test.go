package httpapi_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/store/memory"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
	"github.com/harborlog/server/internal/httpapi"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

var errStore = errors.New("connection refused: harbor_visits")

// failingStore answers every query with errStore.
type failingStore struct {
	store.RecordStore
}

func (failingStore) Query(context.Context, types.Variant, store.Window) ([]types.Record, error) {
	return nil, errStore
}

// newTestServer wires the full dependency graph over rs and returns an
// httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T, rs store.RecordStore) *httptest.Server {
	t.Helper()

	clock := func() time.Time { return fixedNow }
	reports := service.NewReportService(rs, service.ReportOptions{Location: time.UTC, Now: clock})
	dir := service.NewStaffDirectory(memory.NewStaffStore(map[string]string{"grey@school.org": "Ms Grey"}))
	entries := service.NewEntryService(rs, dir, vocab.Default())

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:  log.New(io.Discard),
		Addr:    ":0",
		Reports: reports,
		Entries: entries,
		Now:     clock,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func seeded(t *testing.T) *memory.RecordStore {
	t.Helper()
	ms := memory.NewRecordStore()
	at := func(day string, hour int) time.Time {
		d, _ := time.Parse("2006-01-02", day)
		return d.Add(time.Duration(hour) * time.Hour)
	}
	recs := []types.Record{
		types.VisitRecord{Base: types.Base{Timestamp: at("2025-01-10", 9), ParticipantName: "Ada", YearGroup: 7, PeriodSlot: 1}, ReasonCode: "Food", LoggingStaffName: "Ms Grey"},
		types.VisitRecord{Base: types.Base{Timestamp: at("2025-01-10", 10), ParticipantName: `He said, "Hi"`, YearGroup: 9, PeriodSlot: 2}, ReasonCode: "Medical", LoggingStaffName: "Mr Fox"},
		types.VisitRecord{Base: types.Base{Timestamp: at("2025-01-14", 9), ParticipantName: "Ada", YearGroup: 7, PeriodSlot: 3}, ReasonCode: "Food", LoggingStaffName: "Ms Grey"},
		types.VisitRecord{Base: types.Base{Timestamp: at("2025-01-15", 8), ParticipantName: "Bo", YearGroup: 8, PeriodSlot: 1}, ReasonCode: "Other", LoggingStaffName: "Ms Grey"},
		types.RelocationRecord{Base: types.Base{Timestamp: at("2025-01-10", 11), ParticipantName: "Cy", YearGroup: 10, PeriodSlot: 4}, ResponsibleStaffName: "Mr Fox"},
	}
	for _, r := range recs {
		if _, err := ms.Append(context.Background(), r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return ms
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ── Health ───────────────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, memory.NewRecordStore())

	var body map[string]any
	if code := getJSON(t, ts.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
}

// ── Records ──────────────────────────────────────────────────────────────────

func TestRecords_RangeNewestFirst(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	var body struct {
		Count   int              `json:"count"`
		Records []map[string]any `json:"records"`
	}
	code := getJSON(t, ts.URL+"/v1/harbor/records?start=2025-01-10&end=2025-01-14", &body)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 3 || len(body.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", body.Count)
	}
	if body.Records[0]["created_at"] != "2025-01-14T09:00:00.000Z" {
		t.Errorf("expected newest first, got %v", body.Records[0]["created_at"])
	}
}

func TestRecords_UnknownVariant_404(t *testing.T) {
	ts := newTestServer(t, memory.NewRecordStore())

	var body errorBody
	if code := getJSON(t, ts.URL+"/v1/canteen/records", &body); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body.Error != "unknown_variant" {
		t.Errorf("unexpected error code %q", body.Error)
	}
}

func TestRecords_BadDate_400(t *testing.T) {
	ts := newTestServer(t, memory.NewRecordStore())

	var body errorBody
	if code := getJSON(t, ts.URL+"/v1/harbor/records?start=10/01/2025", &body); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body.Error != "invalid_range" {
		t.Errorf("unexpected error code %q", body.Error)
	}
}

func TestRecords_StartAfterEnd_Empty(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	var body struct {
		Count int `json:"count"`
	}
	if code := getJSON(t, ts.URL+"/v1/harbor/records?start=2025-01-14&end=2025-01-10", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Count != 0 {
		t.Errorf("expected empty selection, got %d", body.Count)
	}
}

func TestRecords_QueryFailure_502(t *testing.T) {
	ts := newTestServer(t, failingStore{RecordStore: memory.NewRecordStore()})

	var body errorBody
	if code := getJSON(t, ts.URL+"/v1/harbor/records", &body); code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}
	if body.Error != "query_failed" || body.Message != errStore.Error() {
		t.Errorf("expected verbatim store message, got %+v", body)
	}
}

// ── Report ───────────────────────────────────────────────────────────────────

func TestReport_JSON(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	var rep types.Report
	code := getJSON(t, ts.URL+"/v1/harbor/report?start=2025-01-10&end=2025-01-15&max_bars=2", &rep)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if rep.Total != 4 || rep.UniqueParticipants != 3 {
		t.Errorf("expected total 4 unique 3, got %d/%d", rep.Total, rep.UniqueParticipants)
	}
	if len(rep.ByYear) != 2 || rep.ByYear[0].Label != "Year 7" || rep.ByYear[0].Percent != 100 {
		t.Errorf("unexpected by_year: %+v", rep.ByYear)
	}
	if len(rep.Categories) != 2 || rep.Categories[0].Name != "reason" {
		t.Errorf("unexpected categories: %+v", rep.Categories)
	}
	if rep.ExportFile != "harbor_2025-01-10_to_2025-01-15.csv" {
		t.Errorf("unexpected export file %q", rep.ExportFile)
	}
}

func TestReport_Protobuf(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/relocation/report?start=2025-01-10&end=2025-01-10", nil)
	req.Header.Set("Accept", "application/x-protobuf")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := st.AsMap()
	if m["total"] != float64(1) || m["variant"] != "relocation" {
		t.Errorf("unexpected report struct: %v", m)
	}
}

func TestReport_BadMaxBars_400(t *testing.T) {
	ts := newTestServer(t, seeded(t))
	if code := getJSON(t, ts.URL+"/v1/harbor/report?max_bars=zero", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

// ── Export ───────────────────────────────────────────────────────────────────

func TestExport_CSV(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	resp, err := http.Get(ts.URL + "/v1/harbor/export?start=2025-01-10&end=2025-01-14")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "harbor_2025-01-10_to_2025-01-14.csv") {
		t.Errorf("unexpected disposition %q", cd)
	}

	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	want := []string{"id", "created_at", "participant_name", "year_group", "period", "reason", "logging_staff"}
	if strings.Join(rows[0], "|") != strings.Join(want, "|") {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[2][2] != `He said, "Hi"` {
		t.Errorf("expected escaped name to round-trip, got %q", rows[2][2])
	}
}

func TestExport_XLSX(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	resp, err := http.Get(ts.URL + "/v1/relocation/export?start=2025-01-10&end=2025-01-10&format=xlsx")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Entries")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "Cy" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestExport_EmptySelection_204(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	resp, err := http.Get(ts.URL + "/v1/relocation/export?start=2024-01-01&end=2024-01-02")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Disposition") != "" {
		t.Error("expected no attachment for an empty selection")
	}
}

func TestExport_BadFormat_400(t *testing.T) {
	ts := newTestServer(t, seeded(t))
	if code := getJSON(t, ts.URL+"/v1/harbor/export?format=pdf", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

// ── Today / Earlier ──────────────────────────────────────────────────────────

func TestToday(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	var body struct {
		Start   string           `json:"start"`
		Count   int              `json:"count"`
		Records []map[string]any `json:"records"`
	}
	if code := getJSON(t, ts.URL+"/v1/harbor/today", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Start != "2025-01-15" || body.Count != 1 || body.Records[0]["participant_name"] != "Bo" {
		t.Errorf("unexpected today listing: %+v", body)
	}
}

func TestEarlier(t *testing.T) {
	ts := newTestServer(t, seeded(t))

	var body struct {
		Days []struct {
			Day   string `json:"day"`
			Count int    `json:"count"`
		} `json:"days"`
	}
	if code := getJSON(t, ts.URL+"/v1/harbor/earlier?days=7", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Days) != 2 || body.Days[0].Day != "2025-01-14" || body.Days[1].Count != 2 {
		t.Errorf("unexpected earlier listing: %+v", body.Days)
	}

	if code := getJSON(t, ts.URL+"/v1/harbor/earlier?days=0", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for days=0, got %d", code)
	}
}

// ── Entries ──────────────────────────────────────────────────────────────────

func postVisit(t *testing.T, ts *httptest.Server, body, email string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/harbor/visits", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("X-Staff-Email", email)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestVisit_Created(t *testing.T) {
	ms := memory.NewRecordStore()
	ts := newTestServer(t, ms)

	resp := postVisit(t, ts, `{"participant_name":"Ada","year_group":9,"period":2,"reason":"Medical"}`, "grey@school.org")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var out types.EntryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.ID == "" || out.Variant != "harbor" {
		t.Errorf("unexpected response %+v", out)
	}

	v := ms.Records(types.VariantHarbor)[0].(types.VisitRecord)
	if v.LoggingStaffName != "Ms Grey" {
		t.Errorf("expected directory name, got %q", v.LoggingStaffName)
	}
}

func TestVisit_Errors(t *testing.T) {
	ts := newTestServer(t, memory.NewRecordStore())
	valid := `{"participant_name":"Ada","year_group":9,"period":2,"reason":"Medical"}`

	cases := []struct {
		name   string
		body   string
		email  string
		status int
		code   string
	}{
		{name: "no identity", body: valid, status: http.StatusUnauthorized, code: "no_identity"},
		{name: "bad reason", body: `{"participant_name":"Ada","year_group":9,"period":2,"reason":"Bored"}`, email: "a@b", status: http.StatusBadRequest, code: "invalid_reason"},
		{name: "bad year", body: `{"participant_name":"Ada","year_group":3,"period":2,"reason":"Medical"}`, email: "a@b", status: http.StatusBadRequest, code: "invalid_year_group"},
		{name: "unknown field", body: `{"participant_name":"Ada","colour":"red"}`, email: "a@b", status: http.StatusBadRequest, code: "bad_body"},
		{name: "not json", body: `nope`, email: "a@b", status: http.StatusBadRequest, code: "bad_body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postVisit(t, ts, tc.body, tc.email)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			var body errorBody
			_ = json.NewDecoder(resp.Body).Decode(&body)
			if body.Error != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, body.Error)
			}
		})
	}
}

func TestRelocation_ProtobufBody(t *testing.T) {
	ms := memory.NewRecordStore()
	ts := newTestServer(t, ms)

	st, err := structpb.NewStruct(map[string]any{
		"participant_name":  "Cy",
		"year_group":        10,
		"period":            4,
		"responsible_staff": "Mr Fox",
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	data, _ := proto.Marshal(st)

	resp, err := http.Post(ts.URL+"/v1/relocation/entries", "application/x-protobuf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if recs := ms.Records(types.VariantRelocation); len(recs) != 1 || recs[0].Participant() != "Cy" {
		t.Errorf("unexpected stored relocations %v", recs)
	}
}
