package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusiondash/internal/shared/testutil"
)

type fakeProbe struct {
	path  string
	stats CacheStats
}

func (p fakeProbe) DataFile() string       { return p.path }
func (p fakeProbe) CacheStats() CacheStats { return p.stats }

type fakeClients int

func (c fakeClients) ClientCount() int { return int(c) }

func TestHealthService_Readiness(t *testing.T) {
	present := testutil.WriteStandardAllocation(t)

	tests := []struct {
		name       string
		probe      DatasetProbe
		wantStatus string
	}{
		{"data file present", fakeProbe{path: present}, "ready"},
		{"data file missing", fakeProbe{path: t.TempDir() + "/missing.xlsx"}, "not_ready"},
		{"no dashboard", nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", tt.probe, nil, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.0.0", status.Version)
			assert.Contains(t, status.Services, "data")
		})
	}
}

func TestHealthService_Liveness(t *testing.T) {
	hs := NewHealthService("1.0.0", "", nil, nil, nil)

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	withBuild := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", nil, nil, nil).Version()
	assert.Equal(t, "1.2.3", withBuild["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", withBuild["build_time"])
	assert.Equal(t, "v1", withBuild["api_version"])

	without := NewHealthService("1.2.3", "", nil, nil, nil).Version()
	assert.NotContains(t, without, "build_time")
}

func TestHealthService_DetailedHealth(t *testing.T) {
	probe := fakeProbe{path: testutil.WriteStandardAllocation(t), stats: CacheStats{Entries: 1, Hits: 4}}
	hs := NewHealthService("1.0.0", "", probe, fakeClients(3), nil)

	detailed := hs.GetDetailedHealth(context.Background())
	require.Equal(t, "ready", detailed.Readiness.Status)
	assert.Equal(t, probe.stats, detailed.Cache)
	assert.Equal(t, 3, detailed.Clients)
	assert.Positive(t, detailed.Runtime.GoRoutines)
}
