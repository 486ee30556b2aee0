// Package api serves the stored results as JSON and lets a client trigger an
// ingestion run.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"resultsync-backend/internal/components/assert"
	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/db"
	"resultsync-backend/internal/pipeline"
	"resultsync-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	report_api_list_students    = "api.list-students"
	report_api_sgpa_progression = "api.sgpa-progression"
	report_api_run_fetcher      = "api.run-fetcher"
)

type Reader interface {
	ListStudents(ctx context.Context) ([]store.StudentTree, error)
	SgpaProgression(ctx context.Context, registerNo string) ([]db.SgpaPoint, error)
}

// RunFunc performs one ingestion run with whatever credentials the server
// was configured with.
type RunFunc func(ctx context.Context) (pipeline.Report, error)

type Server struct {
	reader   Reader
	run      RunFunc
	gatherer prometheus.Gatherer
	tel      telemetry.API

	// held for the whole duration of a run
	running sync.Mutex
}

func NewServer(reader Reader, run RunFunc, gatherer prometheus.Gatherer, tel telemetry.API) *Server {
	assert.NotNil("reader", reader)
	assert.NotNil("run", run)
	assert.NotNil("gatherer", gatherer)
	assert.NotNil("tel", tel)

	return &Server{
		reader:   reader,
		run:      run,
		gatherer: gatherer,
		tel:      telemetry.NewScopedAPI("api", tel),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", s.health)
		r.Get("/students", s.listStudents)
		r.Get("/sgpa_progression/{register_no}", s.sgpaProgression)
	})

	// runs take as long as the portal does
	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/api/run-fetcher", s.runFetcher)

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.reader.ListStudents(r.Context())
	if err != nil {
		s.tel.ReportBroken(report_api_list_students, err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "failed to list students"})
		return
	}
	if students == nil {
		students = []store.StudentTree{}
	}
	render.JSON(w, r, students)
}

func (s *Server) sgpaProgression(w http.ResponseWriter, r *http.Request) {
	registerNo := chi.URLParam(r, "register_no")
	points, err := s.reader.SgpaProgression(r.Context(), registerNo)
	if err != nil {
		s.tel.ReportBroken(report_api_sgpa_progression, err, registerNo)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "failed to get sgpa progression"})
		return
	}
	render.JSON(w, r, points)
}

type runResponse struct {
	Success bool             `json:"success"`
	Output  string           `json:"output"`
	Error   string           `json:"error"`
	Report  *pipeline.Report `json:"report,omitempty"`
}

func (s *Server) runFetcher(w http.ResponseWriter, r *http.Request) {
	if !s.running.TryLock() {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, runResponse{Error: "a run is already in progress"})
		return
	}
	defer s.running.Unlock()

	// a client that goes away does not abort the run
	report, err := s.run(context.WithoutCancel(r.Context()))
	res := runResponse{
		Success: err == nil,
		Output:  report.Summary(),
		Report:  &report,
	}
	if err != nil {
		s.tel.ReportWarning(report_api_run_fetcher, err, report.RunID.String())
		res.Error = err.Error()
	}
	render.JSON(w, r, res)
}
