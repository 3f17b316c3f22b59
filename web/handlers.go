package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"investimmo-bot/geo"
	"investimmo-bot/models"
	"investimmo-bot/services"
)

type pageData struct {
	Tab           string
	City          string
	Budget        int
	Threshold     float64
	Report        *models.ScanReport
	Opportunities []*models.Listing
	Error         string
}

func (s *Server) newPage(tab string) *pageData {
	return &pageData{
		Tab:       tab,
		City:      s.defaults.City,
		Budget:    s.defaults.Budget,
		Threshold: s.board.Threshold(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage("scan"))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	page := s.newPage("scan")
	page.City = strings.TrimSpace(r.FormValue("city"))

	budget, err := parseBudget(r.FormValue("budget"))
	if err != nil {
		page.Error = "Budget invalide : saisissez un montant en euros."
		s.render(w, http.StatusBadRequest, page)
		return
	}
	page.Budget = budget

	report, err := s.scanner.Scan(r.Context(), page.City, budget)
	if err != nil {
		status := scanStatus(err)
		page.Error = scanMessage(status, page.City)
		if status == http.StatusInternalServerError {
			s.logger.Error("[web] Scan of %q failed: %v", page.City, err)
		}
		s.render(w, status, page)
		return
	}

	page.Report = report
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	page := s.newPage("opportunities")
	page.Opportunities = s.board.All()
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleClearOpportunities(w http.ResponseWriter, r *http.Request) {
	s.board.Clear()
	s.logger.Info("[web] Opportunity board cleared")
	http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
}

func (s *Server) handleAPIScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		city = s.defaults.City
	}
	budget := s.defaults.Budget
	if raw := q.Get("budget"); raw != "" {
		b, err := parseBudget(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid budget")
			return
		}
		budget = b
	}

	report, err := s.scanner.Scan(r.Context(), city, budget)
	if err != nil {
		status := scanStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("[web] Scan of %q failed: %v", city, err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAPIOpportunities(w http.ResponseWriter, r *http.Request) {
	all := s.board.All()
	if all == nil {
		all = []*models.Listing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"threshold":     s.board.Threshold(),
		"opportunities": all,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "layout", page); err != nil {
		s.logger.Error("[web] Render %s: %v", page.Tab, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// parseBudget accepts "350000", "350 000" and "350000.50" (cents dropped).
func parseBudget(raw string) (int, error) {
	raw = strings.Join(strings.Fields(raw), "")
	if i := strings.IndexAny(raw, ".,"); i >= 0 {
		raw = raw[:i]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("budget must be positive, got %d", n)
	}
	return n, nil
}

func scanStatus(err error) int {
	switch {
	case errors.Is(err, geo.ErrCommuneNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func scanMessage(status int, city string) string {
	switch status {
	case http.StatusNotFound:
		return fmt.Sprintf("Ville introuvable : %q", city)
	case http.StatusBadRequest:
		return "Saisissez une ville et un budget positif."
	default:
		return "L'analyse a échoué, réessayez dans quelques instants."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
