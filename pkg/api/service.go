// Package api exposes the read-only query surface consumed by the web
// dashboard, plus the toggle endpoint and a websocket live feed. Page
// rendering, sessions and auth live in the dashboard, not here.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AbidHayat/tubewell-project/pkg/history"
	"github.com/AbidHayat/tubewell-project/pkg/ingest"
	"github.com/AbidHayat/tubewell-project/pkg/livestate"
	"github.com/AbidHayat/tubewell-project/pkg/pumpdb"
	"github.com/AbidHayat/tubewell-project/pkg/types"
)

type Server struct {
	state        *livestate.Pool
	history      *history.Buffer
	db           *pumpdb.DB
	controller   *ingest.Controller
	feed         *Feed
	recentWindow time.Duration
}

func NewServer(
	state *livestate.Pool,
	hist *history.Buffer,
	db *pumpdb.DB,
	controller *ingest.Controller,
	feed *Feed,
	recentWindow time.Duration,
) *Server {
	return &Server{
		state:        state,
		history:      hist,
		db:           db,
		controller:   controller,
		feed:         feed,
		recentWindow: recentWindow,
	}
}

// Routes wires all endpoints onto a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tubewells", s.handleList)
	mux.HandleFunc("GET /api/tubewell/{id}/data", s.handleData)
	mux.HandleFunc("GET /api/tubewell/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /api/tubewell/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/tubewell/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/tubewell/{id}/recent", s.handleRecent)
	mux.HandleFunc("GET /api/tubewell/{id}/aggregated", s.handleAggregated)
	mux.HandleFunc("POST /api/tubewell/{id}/toggle", s.handleToggle)
	mux.HandleFunc("/ws", s.feed.serveWS)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) slotFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 || id >= s.state.Size() {
		writeError(w, http.StatusNotFound, "Invalid tubewell")
		return 0, false
	}
	return id, true
}

func statusLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]any, 0, s.state.Size())
	for i := 0; i < s.state.Size(); i++ {
		snap, err := s.state.Snapshot(i)
		if err != nil {
			continue
		}
		out = append(out, map[string]any{
			"id":     i,
			"name":   snap.Name,
			"status": statusLabel(snap.Status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	snap, err := s.state.Snapshot(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid tubewell")
		return
	}

	// Readings are meaningless while the pump is off; serve zeroes.
	if !snap.Status {
		zero := types.PhaseValues{}
		snap.VoltageV = zero
		snap.CurrentA = zero
		snap.ActivePowerKW = zero
		snap.ReactivePowerKW = zero
		snap.PowerFactor = zero
		snap.FrequencyHz = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":           snap.Name,
		"status":         statusLabel(snap.Status),
		"voltage":        snap.VoltageV,
		"current":        snap.CurrentA,
		"active_power":   snap.ActivePowerKW,
		"reactive_power": snap.ReactivePowerKW,
		"power_factor":   snap.PowerFactor,
		"frequency":      snap.FrequencyHz,
		"total_runtime":  snap.TotalRuntimeSecs,
		"events":         snap.Events,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	on, err := s.state.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid tubewell")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": statusLabel(on)})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	on, err := s.controller.Toggle(id)
	if err != nil {
		if errors.Is(err, livestate.ErrInvalidSlot) {
			writeError(w, http.StatusNotFound, "Invalid tubewell")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": statusLabel(on)})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	events, err := s.state.Events(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid tubewell")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	metrics, err := s.history.Read(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invalid tubewell")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}
	rows, err := s.db.QueryRecent(id, s.recentWindow)
	if err != nil {
		log.Printf("[api] recent query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"timestamp":      row.Timestamp,
			"voltage":        types.PhaseValues{A: row.VoltageA, B: row.VoltageB, C: row.VoltageC},
			"current":        types.PhaseValues{A: row.CurrentA, B: row.CurrentB, C: row.CurrentC},
			"active_power":   types.PhaseValues{A: row.ActivePowerA, B: row.ActivePowerB, C: row.ActivePowerC},
			"reactive_power": types.PhaseValues{A: row.ReactivePowerA, B: row.ReactivePowerB, C: row.ReactivePowerC},
			"frequency":      row.Frequency,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAggregated serves bucket rows for an explicit ?date=YYYY-MM-DD
// day, or the last 24 hours by default.
func (s *Server) handleAggregated(w http.ResponseWriter, r *http.Request) {
	id, ok := s.slotFromPath(w, r)
	if !ok {
		return
	}

	var start, end int64
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		start = day.Unix()
		end = day.AddDate(0, 0, 1).Unix()
	} else {
		now := time.Now().UTC()
		end = now.Unix()
		start = now.AddDate(0, 0, -1).Unix()
	}

	rows, err := s.db.QueryAggregated(id, start, end)
	if err != nil {
		log.Printf("[api] aggregated query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"timestamp":      row.BucketStart,
			"voltage":        types.PhaseValues{A: row.VoltageAAvg, B: row.VoltageBAvg, C: row.VoltageCAvg},
			"current":        types.PhaseValues{A: row.CurrentAAvg, B: row.CurrentBAvg, C: row.CurrentCAvg},
			"active_power":   types.PhaseValues{A: row.ActivePowerAAvg, B: row.ActivePowerBAvg, C: row.ActivePowerCAvg},
			"reactive_power": types.PhaseValues{A: row.ReactivePowerAAvg, B: row.ReactivePowerBAvg, C: row.ReactivePowerCAvg},
			"frequency":      row.FrequencyAvg,
			"data_points":    row.DataPoints,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
