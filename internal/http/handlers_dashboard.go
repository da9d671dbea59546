package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"iuran/internal/auth"
	"iuran/internal/core"
	applog "iuran/internal/log"
)

type navView struct {
	Pages  []auth.Page
	Active string
	Name   string
}

type cohortRow struct {
	CohortYear int
	Total      string
}

type yearRow struct {
	Year        string
	Total       string
	Target      string
	CarryOver   string
	Progress    int
	Cohorts     []cohortRow
	LastUpdated string
}

type overviewView struct {
	Year           string
	Found          bool
	Collected      string
	Target         string
	Progress       int
	Cohorts        []cohortRow
	GrandCollected string
	GrandTarget    string
	GrandProgress  int
	Years          []yearRow
}

type dashboardView struct {
	Nav      navView
	Overview overviewView
}

func (s *Server) nav(sess auth.Session, active string) navView {
	return navView{
		Pages:  auth.PagesFor(sess),
		Active: active,
		Name:   sess.Name,
	}
}

// handleDashboard renders the dashboard shell; the overview section loads and
// refreshes itself through the /ui/overview partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	year := yearParam(r)

	ov, err := s.buildOverview(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed",
			applog.FieldError, err,
			applog.FieldYear, year)
	}

	s.render(w, r, "dashboard.html", dashboardView{
		Nav:      s.nav(sess, auth.PageDashboard.Path),
		Overview: ov,
	})
}

// handleOverview renders the overview partial for HTMX refreshes.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	year := yearParam(r)
	ov, err := s.buildOverview(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview load failed",
			applog.FieldError, err,
			applog.FieldYear, year)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<section id="overview" class="overview"><div class="placeholder">Gagal memuat ringkasan</div></section>`))
		return
	}
	s.render(w, r, "overview.html", ov)
}

// buildOverview fetches the requested year's ledger and the cross-year summary
// in parallel and folds them into one view.
func (s *Server) buildOverview(ctx context.Context, year string) (overviewView, error) {
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	var (
		led   core.YearLedger
		found bool
		summ  core.Summary
	)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		var err error
		led, found, err = s.ledger.FetchYearLedger(gctx, year)
		return err
	})
	g.Go(func() error {
		var err error
		summ, _, err = s.ledger.FetchSummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return overviewView{Year: year}, err
	}

	ov := overviewView{
		Year:      year,
		Found:     found,
		Collected: core.FormatRupiah(led.Rollup),
		Target:    core.FormatRupiah(led.Target),
		Progress:  core.Progress(led.Rollup, led.Target),
		Cohorts:   cohortRows(led.Cohorts),
	}

	collected, target := summ.GrandTotal()
	ov.GrandCollected = core.FormatRupiah(collected)
	ov.GrandTarget = core.FormatRupiah(target)
	ov.GrandProgress = core.Progress(collected, target)
	ov.Years = yearRows(summ)
	return ov, nil
}

func cohortRows(cohorts []core.CohortContribution) []cohortRow {
	rows := make([]cohortRow, 0, len(cohorts))
	for _, c := range cohorts {
		rows = append(rows, cohortRow{
			CohortYear: c.CohortYear,
			Total:      core.FormatRupiah(c.Total),
		})
	}
	return rows
}

func yearRows(summ core.Summary) []yearRow {
	rows := make([]yearRow, 0, len(summ.Years))
	for year, e := range summ.Years {
		row := yearRow{
			Year:      year,
			Total:     core.FormatRupiah(e.Total),
			Target:    core.FormatRupiah(e.Target),
			CarryOver: core.FormatRupiah(e.CarryOver),
			Progress:  core.Progress(e.Total, e.Target),
			Cohorts:   cohortRows(e.Cohorts),
		}
		if !e.LastUpdated.IsZero() {
			row.LastUpdated = e.LastUpdated.Format("2 Jan 2006 15:04")
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year > rows[j].Year })
	return rows
}

// yearParam reads the ?year= query parameter, defaulting to the current year.
// Anything that is not a four-digit year falls back to the default.
func yearParam(r *http.Request) string {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if len(v) == 4 {
		if _, err := strconv.Atoi(v); err == nil {
			return v
		}
	}
	return strconv.Itoa(time.Now().Year())
}
