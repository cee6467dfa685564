package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/types"
)

type Dependencies struct {
	Logger  *log.Logger
	Addr    string
	Reports *service.ReportService
	Entries *service.EntryService

	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	reports    *service.ReportService
	entries    *service.EntryService
	now        func() time.Time
	upgrader   websocket.Upgrader
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	now := d.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		logger:  d.Logger,
		mux:     mux,
		reports: d.Reports,
		entries: d.Entries,
		now:     now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /v1/{variant}/records", s.handleRecords)
	mux.HandleFunc("GET /v1/{variant}/report", s.handleReport)
	mux.HandleFunc("GET /v1/{variant}/export", s.handleExport)
	mux.HandleFunc("GET /v1/{variant}/today", s.handleToday)
	mux.HandleFunc("GET /v1/{variant}/earlier", s.handleEarlier)
	mux.HandleFunc("GET /v1/{variant}/live", s.handleLive)

	mux.HandleFunc("POST /v1/harbor/visits", s.handleVisit)
	mux.HandleFunc("POST /v1/relocation/entries", s.handleRelocation)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"server_time": s.now().UTC().Format(time.RFC3339Nano),
	})
}

type recordsResponse struct {
	Variant types.Variant    `json:"variant"`
	Start   string           `json:"start"`
	End     string           `json:"end"`
	Count   int              `json:"count"`
	Records []map[string]any `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	variant, rng, ok := s.selection(w, r)
	if !ok {
		return
	}

	recs, err := s.reports.Snapshot(r.Context(), variant, rng)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordsResponse{
		Variant: variant,
		Start:   rng.StartKey(),
		End:     rng.EndKey(),
		Count:   len(recs),
		Records: recordViews(recs),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	variant, rng, ok := s.selection(w, r)
	if !ok {
		return
	}

	maxBars := 0
	if v := r.URL.Query().Get("max_bars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_max_bars", "max_bars must be a positive integer")
			return
		}
		maxBars = n
	}

	rep, err := s.reports.Build(r.Context(), variant, rng, maxBars)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if wantsProtobuf(r) {
		st, err := toStruct(rep)
		if err != nil {
			s.logger.Error("report proto encode", "err", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
		writeProto(w, http.StatusOK, st)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	variant, ok := s.variant(w, r)
	if !ok {
		return
	}

	now := s.now()
	recs, err := s.reports.Today(r.Context(), variant, now)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	day := report.DayKey(now, s.reports.Location())
	writeJSON(w, http.StatusOK, recordsResponse{
		Variant: variant,
		Start:   day,
		End:     day,
		Count:   len(recs),
		Records: recordViews(recs),
	})
}

type dayGroupView struct {
	Day     string           `json:"day"`
	Count   int              `json:"count"`
	Records []map[string]any `json:"records"`
}

func (s *Server) handleEarlier(w http.ResponseWriter, r *http.Request) {
	variant, ok := s.variant(w, r)
	if !ok {
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			writeError(w, http.StatusBadRequest, "invalid_days", "days must be between 1 and 366")
			return
		}
		days = n
	}

	groups, err := s.reports.Earlier(r.Context(), variant, s.now(), days)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]dayGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, dayGroupView{Day: g.Day, Count: len(g.Records), Records: recordViews(g.Records)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"variant": variant,
		"days":    out,
	})
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req types.VisitRequest
	if err := decodeEntry(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "invalid request body")
		return
	}

	resp, err := s.entries.RecordVisit(r.Context(), req, r.Header.Get("X-Staff-Email"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRelocation(w http.ResponseWriter, r *http.Request) {
	var req types.RelocationRequest
	if err := decodeEntry(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "invalid request body")
		return
	}

	resp, err := s.entries.RecordRelocation(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// variant parses the {variant} path segment, answering 404 when unknown.
func (s *Server) variant(w http.ResponseWriter, r *http.Request) (types.Variant, bool) {
	v, err := types.ParseVariant(r.PathValue("variant"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_variant", err.Error())
		return "", false
	}
	return v, true
}

func (s *Server) selection(w http.ResponseWriter, r *http.Request) (types.Variant, report.DateRange, bool) {
	variant, ok := s.variant(w, r)
	if !ok {
		return "", report.DateRange{}, false
	}
	q := r.URL.Query()
	rng, err := s.reports.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return "", report.DateRange{}, false
	}
	return variant, rng, true
}

// writeServiceError maps service errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var qe *service.QueryError
	switch {
	case errors.As(err, &qe):
		s.logger.Warn("query failed", "err", err)
		writeError(w, http.StatusBadGateway, "query_failed", err.Error())
	case errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, service.ErrMissingParticipant):
		writeError(w, http.StatusBadRequest, "missing_participant", err.Error())
	case errors.Is(err, service.ErrInvalidYear):
		writeError(w, http.StatusBadRequest, "invalid_year_group", err.Error())
	case errors.Is(err, service.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "invalid_period", err.Error())
	case errors.Is(err, service.ErrInvalidReason):
		writeError(w, http.StatusBadRequest, "invalid_reason", err.Error())
	case errors.Is(err, service.ErrMissingStaff):
		writeError(w, http.StatusBadRequest, "missing_staff", err.Error())
	case errors.Is(err, service.ErrNoIdentity):
		writeError(w, http.StatusUnauthorized, "no_identity", err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
