package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/pingsweep/internal/report"
	"github.com/hamed0406/pingsweep/internal/scheduler"
)

type fakeProgress struct{ p scheduler.Progress }

func (f fakeProgress) Progress() scheduler.Progress { return f.p }

func setupRouter(t *testing.T, keys []string) (http.Handler, *report.Aggregator) {
	t.Helper()
	rep := report.New()
	prog := fakeProgress{p: scheduler.Progress{RunID: "run-1", Repeats: 2, Planned: 8, Settled: 3}}
	return NewServer(zap.NewNop(), rep, prog, keys).Router(), rep
}

func TestReport_JSON(t *testing.T) {
	h, rep := setupRouter(t, nil)
	rep.RecordSuccess()
	rep.RecordSuccess()
	rep.RecordTimeout()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got struct {
		RunID  string `json:"run_id"`
		Report struct {
			Success, Timeout, Error, Total int64
		} `json:"report"`
		Progress scheduler.Progress `json:"progress"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Report.Success != 2 || got.Report.Timeout != 1 || got.Report.Total != 3 {
		t.Fatalf("unexpected body: %+v", got)
	}
	if got.Progress.Planned != 8 || got.Progress.Settled != 3 {
		t.Fatalf("unexpected progress: %+v", got.Progress)
	}
}

func TestReport_RequiresKeyButHealthzIsOpen(t *testing.T) {
	h, _ := setupRouter(t, []string{"secret"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 with key, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := NewServer(zap.NewNop(), report.New(), fakeProgress{}, nil)
	addr, err := srv.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("want ok, got %q", body)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := http.Get("http://" + addr + "/healthz"); err == nil {
		t.Fatalf("want error after shutdown")
	}
}
