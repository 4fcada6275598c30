package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(s Status) Probe {
	return func(ctx context.Context) Result { return Result{Status: s} }
}

func TestRegistry_Run(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"empty registry", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unknown counts as degraded", []Status{"unknown"}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("nic-test", "1.0.0")
			for i, s := range tt.statuses {
				r.RegisterFunc(string(rune('a'+i)), fixed(s))
			}

			report := r.Run(context.Background())
			assert.Equal(t, tt.expected, report.Status)
			assert.Equal(t, "nic-test", report.Service)
			assert.Equal(t, "1.0.0", report.Version)
			assert.Len(t, report.Checks, len(tt.statuses))
		})
	}
}

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := NewRegistry("nic", "1.0.0")
	r.RegisterFunc("zeta", fixed(StatusHealthy))
	r.RegisterFunc("alpha", fixed(StatusDegraded))
	r.RegisterFunc("alpha", fixed(StatusHealthy))

	report := r.Run(context.Background())
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "alpha", report.Checks[0].Name)
	assert.Equal(t, "zeta", report.Checks[1].Name)
	assert.Equal(t, StatusHealthy, report.Status)
}

func TestRegistry_ContextDeadline(t *testing.T) {
	r := NewRegistry("nic", "1.0.0")
	r.RegisterFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		return Result{Status: StatusUnhealthy, Message: ctx.Err().Error()}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report := r.Run(ctx)
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks[0].Message)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	ok := PingCheck("audit", fakePinger{}).Probe(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)

	failed := PingCheck("audit", fakePinger{err: errors.New("database is locked")}).Probe(context.Background())
	assert.Equal(t, StatusUnhealthy, failed.Status)
	assert.Equal(t, "database is locked", failed.Message)
}

func TestFileCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")

	missing := FileCheck("catalog", path).Probe(context.Background())
	assert.Equal(t, StatusDegraded, missing.Status)

	require.NoError(t, os.WriteFile(path, []byte("commands: []\n"), 0644))
	present := FileCheck("catalog", path).Probe(context.Background())
	assert.Equal(t, StatusHealthy, present.Status)
	assert.Equal(t, path, present.Details["path"])
}

func TestCountCheck(t *testing.T) {
	n := 0
	check := CountCheck("commands", 1, func() int { return n })

	assert.Equal(t, StatusDegraded, check.Probe(context.Background()).Status)
	n = 3
	assert.Equal(t, StatusHealthy, check.Probe(context.Background()).Status)
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry("nic-gateway", "0.3.0")
	r.RegisterFunc("self", fixed(StatusHealthy))

	rec := httptest.NewRecorder()
	r.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "nic-gateway", report.Service)

	r.Register(PingCheck("audit", fakePinger{err: errors.New("closed")}))
	rec = httptest.NewRecorder()
	r.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
