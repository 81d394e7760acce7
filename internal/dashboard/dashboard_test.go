package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSkipsHeader(t *testing.T) {
	s := New(writeCSV(t, "date,region,cases\n2020-03-01,London,13\n2020-03-08,London,167\n"))

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.points, 2)
	assert.Equal(t, CasePoint{Date: "2020-03-01", Region: "London", Cases: 13}, s.points[0])
}

func TestMissingFileServesEmptyDataset(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.csv"))

	r := Mount(chi.NewRouter(), s)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/dashboard/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var page struct {
		Points int `json:"points"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Zero(t, page.Points)
}

func TestSummaryTotalsByRegion(t *testing.T) {
	s := New(writeCSV(t, "2020-03-01,London,10\n2020-03-08,London,20\n2020-03-01,North West,5\n"))

	r := Mount(chi.NewRouter(), s)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/dashboard/summary")
	require.NoError(t, err)
	defer resp.Body.Close()

	var totals map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&totals))
	assert.Equal(t, map[string]int{"London": 30, "North West": 5}, totals)
}
