package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harborlog/server/internal/harborlog/service"
	"github.com/harborlog/server/internal/harborlog/types"
)

const liveWriteTimeout = 5 * time.Second

// liveSelection is what the client sends to pick a range.
type liveSelection struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	MaxBars int    `json:"max_bars,omitempty"`
}

type liveEvent struct {
	Event      string        `json:"event"`
	Generation uint64        `json:"generation,omitempty"`
	Start      string        `json:"start,omitempty"`
	End        string        `json:"end,omitempty"`
	Report     *types.Report `json:"report,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// liveConn serialises writes; gorilla allows one concurrent writer.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) send(ev liveEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// handleLive keeps one dashboard in sync with the client's range selection.
// Every selection is answered with a loading event, then with a report or
// error event for that selection only; results for superseded selections are
// dropped.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	variant, ok := s.variant(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	lc := &liveConn{conn: conn}
	var maxBars int
	var barsMu sync.Mutex

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := service.NewView(ctx, s.reports, variant, func(st service.ViewState) {
		ev := liveEvent{
			Generation: st.Generation,
			Start:      st.Range.StartKey(),
			End:        st.Range.EndKey(),
		}
		if st.Err != "" {
			ev.Event = "error"
			ev.Message = st.Err
		} else {
			barsMu.Lock()
			n := maxBars
			barsMu.Unlock()
			rep := s.reports.Report(variant, st.Range, st.Records, n)
			ev.Event = "report"
			ev.Report = &rep
		}
		if err := lc.send(ev); err != nil {
			s.logger.Debug("live send", "err", err)
		}
	})
	defer view.Close()

	s.selectRange(lc, view, liveSelection{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sel liveSelection
		if err := json.Unmarshal(data, &sel); err != nil {
			_ = lc.send(liveEvent{Event: "error", Message: "invalid selection"})
			continue
		}
		barsMu.Lock()
		maxBars = sel.MaxBars
		barsMu.Unlock()
		s.selectRange(lc, view, sel)
	}
}

func (s *Server) selectRange(lc *liveConn, view *service.View, sel liveSelection) {
	rng, err := s.reports.ParseRange(sel.Start, sel.End)
	if err != nil {
		_ = lc.send(liveEvent{Event: "error", Message: err.Error()})
		return
	}

	// loading goes out before the fetch starts so it always precedes the
	// matching report
	_ = lc.send(liveEvent{Event: "loading", Start: rng.StartKey(), End: rng.EndKey()})
	view.SetRange(rng)
}
