package http

import (
	"bytes"
	"net/http"
	"time"

	"donasi/internal/core"
	"donasi/internal/export"
	"donasi/internal/log"
	"donasi/internal/report"
)

// handleTotal refetches the donation total and renders its card.
func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	res := <-s.board.Total.Refetch(r.Context())
	view := newTotalView("total", "Total Donasi Terkumpul", res.Value, res.Message)
	s.render(w, r, NewHTMXResponse().TriggerView(s.board.Total.Name(), res.Message), "total", view)
}

// handleDisbursed refetches the disbursed total and renders its card.
func (s *Server) handleDisbursed(w http.ResponseWriter, r *http.Request) {
	res := <-s.board.Disbursed.Refetch(r.Context())
	view := newTotalView("disbursed", "Total Dana Tersalurkan", res.Value, res.Message)
	s.render(w, r, NewHTMXResponse().TriggerView(s.board.Disbursed.Name(), res.Message), "total", view)
}

// handleDonors refetches the donor list.
func (s *Server) handleDonors(w http.ResponseWriter, r *http.Request) {
	res := <-s.board.Donors.Refetch(r.Context())
	view := donorsView{Names: res.Value, Message: res.Message}
	s.render(w, r, NewHTMXResponse().TriggerView(s.board.Donors.Name(), res.Message), "donors", view)
}

func (s *Server) tabTask(w http.ResponseWriter, tab report.Tab, ok bool) (*report.Task[core.Table], bool) {
	if !ok {
		NotFoundError("Laporan tidak ditemukan").Write(w)
		return nil, false
	}
	task, ok := s.board.Tab(tab)
	if !ok {
		NotFoundError("Laporan tidak ditemukan").Write(w)
		return nil, false
	}
	return task, true
}

// handleReportTable refetches a tab and renders its compact table.
func (s *Server) handleReportTable(w http.ResponseWriter, r *http.Request) {
	tab, ok := parseTab(r)
	task, ok := s.tabTask(w, tab, ok)
	if !ok {
		return
	}
	res := <-task.Refetch(r.Context())
	view := newTableView(res.Value, tab, s.board.Service().Config(), res.Message)
	s.render(w, r, NewHTMXResponse().TriggerView(task.Name(), res.Message), "report_table", view)
}

// handleReportDetail renders one row from the tab's last successful fetch,
// fetching only when the tab has never loaded.
func (s *Server) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	tab, ok := parseTab(r)
	task, ok := s.tabTask(w, tab, ok)
	if !ok {
		return
	}
	i, ok := parseRowIndex(r)
	if !ok {
		NotFoundError("Baris tidak ditemukan").Write(w)
		return
	}

	table, ok := task.LastSuccess()
	if !ok {
		res := task.Load(r.Context())
		if res.Err != nil {
			ErrorResponse(http.StatusBadGateway, res.Message).Write(w)
			return
		}
		table = res.Value
	}

	view, ok := newDetailView(table, tab, i, s.board.Service().Config())
	if !ok {
		NotFoundError("Baris tidak ditemukan").Write(w)
		return
	}
	s.render(w, r, NewHTMXResponse(), "report_detail", view)
}

// handleReportExport downloads a fresh read of a tab as xlsx.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	tab, ok := parseExportTab(r)
	task, ok := s.tabTask(w, tab, ok)
	if !ok {
		return
	}

	res := task.Load(r.Context())
	if res.Err != nil {
		ErrorResponse(http.StatusBadGateway, res.Message).Write(w)
		return
	}

	cols := s.board.Service().Config().Columns
	var buf bytes.Buffer
	if err := export.Write(&buf, res.Value, export.Options{AmountColumns: report.AmountColumns(tab, cols)}); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context()).WithComponent(log.ComponentExport)).
			LogError(r.Context(), "Export failed", err, log.OpExport, log.NewFields().WithView(string(tab)))
		InternalServerError("Gagal membuat berkas").Write(w)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Report exported",
		log.NewFields().
			WithView(string(tab)).
			WithSheet(res.Value.Sheet, len(res.Value.Rows), len(export.Columns(res.Value))).
			WithOperation(log.OpExport).
			ToSlice()...)

	NewHTMXResponse().
		Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Header("Content-Disposition", `attachment; filename="`+export.Filename(string(tab), s.now())+`"`).
		Body(buf.Bytes()).
		Write(w)
}

// summaryResponse is the JSON shape of /api/ringkasan.
type summaryResponse struct {
	report.Summary
	Tabs map[report.Tab]tabState `json:"laporan"`
}

type tabState struct {
	State     report.State `json:"state"`
	Message   string       `json:"message,omitempty"`
	Rows      int          `json:"rows"`
	UpdatedAt time.Time    `json:"updated_at,omitzero"`
}

// handleSummaryAPI refetches the headline views and returns every view state.
func (s *Server) handleSummaryAPI(w http.ResponseWriter, r *http.Request) {
	summary, err := s.board.Refresh(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Summary refreshed with failed views",
			log.FieldError, err.Error(),
			log.FieldErrorType, report.ErrorType(err))
	}
	resp := summaryResponse{
		Summary: summary,
		Tabs:    make(map[report.Tab]tabState, len(report.Tabs())),
	}
	for _, tab := range report.Tabs() {
		task, ok := s.board.Tab(tab)
		if !ok {
			continue
		}
		snap := task.Snapshot()
		resp.Tabs[tab] = tabState{
			State:     snap.State,
			Message:   snap.Message,
			Rows:      len(snap.Value.Rows),
			UpdatedAt: snap.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReportAPI returns the typed rows of a tab.
func (s *Server) handleReportAPI(w http.ResponseWriter, r *http.Request) {
	tab, ok := parseTab(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Laporan tidak ditemukan"})
		return
	}
	task, ok := s.board.Tab(tab)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Laporan tidak ditemukan"})
		return
	}
	res := task.Load(r.Context())
	if res.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": res.Message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tab":   tab,
		"sheet": res.Value.Sheet,
		"rows":  report.MapTab(tab, res.Value, s.board.Service().Config().Columns),
	})
}
