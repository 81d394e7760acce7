// Package dashboard embeds the analytics sub-application. It receives the
// configured base router and returns it with the dashboard mounted; chart
// rendering is left to the frontend consuming the data endpoints.
package dashboard

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dyilmaz/community-backend/internal/api/httpx"
	"github.com/dyilmaz/community-backend/internal/worker"
)

type CasePoint struct {
	Date   string `json:"date"`
	Region string `json:"region"`
	Cases  int    `json:"cases"`
}

type Service struct {
	csvPath string

	mu     sync.RWMutex
	points []CasePoint
}

// New loads the case series from csvPath. A missing or unreadable file is
// not fatal: the dashboard serves an empty dataset until a reload succeeds.
func New(csvPath string) *Service {
	s := &Service{csvPath: csvPath}
	if err := s.Reload(); err != nil {
		slog.Warn("dashboard data unavailable", "path", csvPath, "err", err)
	}
	return s
}

// Reload re-reads the CSV (date,region,cases per row; header optional).
func (s *Service) Reload() error {
	f, err := os.Open(s.csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = 3
	records, err := rd.ReadAll()
	if err != nil {
		return err
	}

	var points []CasePoint
	for _, rec := range records {
		cases, err := strconv.Atoi(rec[2])
		if err != nil {
			continue // header or malformed row
		}
		points = append(points, CasePoint{Date: rec[0], Region: rec[1], Cases: cases})
	}

	s.mu.Lock()
	s.points = points
	s.mu.Unlock()
	return nil
}

// StartRefresh re-loads the dataset on a fixed interval until stop fires.
// The actual file read runs on the shared worker pool.
func (s *Service) StartRefresh(wp *worker.Pool, interval time.Duration, stop <-chan struct{}) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				wp.Submit(func() {
					if err := s.Reload(); err != nil {
						slog.Warn("dashboard refresh", "err", err)
					}
				})
			}
		}
	}()
}

func (s *Service) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		n := len(s.points)
		s.mu.RUnlock()
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"title":  "COVID-19 cases",
			"points": n,
		})
	})
	r.Get("/data", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		out := make([]CasePoint, len(s.points))
		copy(out, s.points)
		s.mu.RUnlock()
		httpx.WriteJSON(w, http.StatusOK, out)
	})
	r.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		totals := map[string]int{}
		for _, p := range s.points {
			totals[p.Region] += p.Cases
		}
		s.mu.RUnlock()
		httpx.WriteJSON(w, http.StatusOK, totals)
	})
	return r
}

// Mount attaches the dashboard to the base application router and returns
// the router unchanged otherwise.
func Mount(r chi.Router, s *Service) chi.Router {
	r.Mount("/dashboard", s.routes())
	return r
}
