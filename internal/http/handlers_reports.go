package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"iuran/internal/auth"
	"iuran/internal/core"
	"iuran/internal/ledger"
	applog "iuran/internal/log"
)

type reportsView struct {
	Nav            navView
	Years          []yearRow
	GrandCollected string
	GrandTarget    string
	GrandProgress  int
}

// handleReports renders the cross-year contribution report.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	summ, _, err := s.ledger.FetchSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reports load failed", applog.FieldError, err)
	}

	collected, target := summ.GrandTotal()
	s.render(w, r, "reports.html", reportsView{
		Nav:            s.nav(sess, auth.PageReports.Path),
		Years:          yearRows(summ),
		GrandCollected: core.FormatRupiah(collected),
		GrandTarget:    core.FormatRupiah(target),
		GrandProgress:  core.Progress(collected, target),
	})
}

type editView struct {
	Nav   navView
	Years []string
	Year  string
}

// handleEditForm renders the admin form for correcting a cohort's total.
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	years := []string{strconv.Itoa(time.Now().Year())}
	if summ, ok, err := s.ledger.FetchSummary(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Edit form load failed", applog.FieldError, err)
	} else if ok {
		seen := map[string]bool{years[0]: true}
		for year := range summ.Years {
			if !seen[year] {
				years = append(years, year)
				seen[year] = true
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(years)))
	}

	s.render(w, r, "edit.html", editView{
		Nav:   s.nav(sess, auth.PageEdit.Path),
		Years: years,
		Year:  yearParam(r),
	})
}

// handleUpdate applies a cohort total correction and answers with an HTMX
// fragment. A successful write triggers a client-side overview refresh.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Format permintaan tidak valid</div>`))
		return
	}

	year := sanitizeInput(r.Form.Get("year"))
	cohortStr := strings.TrimSpace(r.Form.Get("cohort_year"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	if len(year) != 4 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Tahun tidak valid</div>`))
		return
	}
	if _, err := strconv.Atoi(year); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Tahun tidak valid</div>`))
		return
	}
	cohortYear, err := strconv.Atoi(cohortStr)
	if err != nil || core.ValidateCohortYear(cohortYear) != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Tahun angkatan tidak valid</div>`))
		return
	}
	amount, err := core.ParseRupiah(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Nominal tidak valid</div>`))
		return
	}

	sess, _ := sessionFromContext(r.Context())
	err = s.ledger.UpdateCohortContribution(r.Context(), year, cohortYear, amount, sess.Username)
	switch {
	case errors.Is(err, ledger.ErrYearNotFound):
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Tahun ` + template.HTMLEscapeString(year) + ` belum terdaftar</div>`))
		return
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidCohortYear):
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Data tidak valid</div>`))
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Cohort update failed",
			applog.FieldError, err,
			applog.FieldYear, year,
			applog.FieldCohortYear, cohortYear)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Gagal menyimpan perubahan</div>`))
		return
	}

	w.Header().Set("HX-Trigger", `{"ledger:updated": {"year": "`+year+`", "cohort": `+strconv.Itoa(cohortYear)+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Iuran angkatan ` + strconv.Itoa(cohortYear) +
		` tahun ` + template.HTMLEscapeString(year) +
		` diperbarui: ` + template.HTMLEscapeString(core.FormatRupiah(amount)) + `</div>`))
}
