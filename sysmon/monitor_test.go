package sysmon

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeSampler struct {
	reading Reading
	rss     int
	memErr  error
	rssErr  error
	calls   int
}

func (f *fakeSampler) Memory() (Reading, error) {
	f.calls++
	return f.reading, f.memErr
}

func (f *fakeSampler) ProcessRSS() (int, error) {
	return f.rss, f.rssErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitor_ReturnsLastSampleWithoutImplicitRefresh(t *testing.T) {
	s := &fakeSampler{reading: Reading{TotalMB: 8000, UsedMB: 3000, FreeMB: 5000}, rss: 120}
	m := New(WithSampler(s), WithFallback(nil), WithLogger(quietLogger()))

	if m.TotalMB() != 8000 || m.UsedMB() != 3000 || m.FreeMB() != 5000 || m.ProcessRSSMB() != 120 {
		t.Fatalf("unexpected snapshot %+v", m.Snapshot())
	}

	// Host changes but nobody refreshes
	s.reading.FreeMB = 100
	if m.FreeMB() != 5000 {
		t.Errorf("getter refreshed implicitly: free=%d", m.FreeMB())
	}

	m.Refresh()
	if m.FreeMB() != 100 {
		t.Errorf("expected 100 after refresh, got %d", m.FreeMB())
	}
	if s.calls != 2 {
		t.Errorf("expected 2 samples, got %d", s.calls)
	}
}

func TestMonitor_FallsBackToSecondarySampler(t *testing.T) {
	primary := &fakeSampler{memErr: errors.New("boom"), rss: 10}
	secondary := &fakeSampler{reading: Reading{TotalMB: 2000, UsedMB: 500, FreeMB: 1500}}
	m := New(WithSampler(primary), WithFallback(secondary), WithLogger(quietLogger()))

	snap := m.Snapshot()
	if snap.FreeMB != 1500 || snap.Estimated {
		t.Errorf("expected fallback reading, got %+v", snap)
	}
}

func TestMonitor_DefaultsWhenEverythingFails(t *testing.T) {
	primary := &fakeSampler{memErr: errors.New("boom"), rssErr: errors.New("boom")}
	secondary := &fakeSampler{memErr: errors.New("also boom")}
	m := New(
		WithSampler(primary),
		WithFallback(secondary),
		WithDefaults(4096, 2048),
		WithLogger(quietLogger()),
	)

	snap := m.Snapshot()
	if !snap.Estimated {
		t.Error("expected estimated snapshot")
	}
	if snap.TotalMB != 4096 || snap.FreeMB != 2048 || snap.UsedMB != 2048 {
		t.Errorf("unexpected defaults %+v", snap)
	}
	if m.IsUnderPressure() {
		t.Error("default reading should be healthy")
	}
}

func TestMonitor_KeepsPreviousRSSOnFailure(t *testing.T) {
	s := &fakeSampler{reading: Reading{TotalMB: 1000, UsedMB: 100, FreeMB: 900}, rss: 77}
	m := New(WithSampler(s), WithFallback(nil), WithLogger(quietLogger()))

	s.rssErr = errors.New("gone")
	m.Refresh()
	if m.ProcessRSSMB() != 77 {
		t.Errorf("expected previous rss 77, got %d", m.ProcessRSSMB())
	}
}

func TestSnapshot_UnderPressure(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"low free", Snapshot{TotalMB: 16000, UsedMB: 1000, FreeMB: 499}, true},
		{"free at threshold", Snapshot{TotalMB: 16000, UsedMB: 1000, FreeMB: 500}, false},
		{"high usage", Snapshot{TotalMB: 10000, UsedMB: 9100, FreeMB: 900}, true},
		{"usage at threshold", Snapshot{TotalMB: 10000, UsedMB: 9000, FreeMB: 1000}, false},
		{"unknown total", Snapshot{TotalMB: 0, UsedMB: 0, FreeMB: 1000}, false},
	}
	for _, tc := range cases {
		if got := tc.snap.UnderPressure(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCheckHealth_Warning(t *testing.T) {
	h := CheckHealth(Snapshot{TotalMB: 8000, UsedMB: 7700, FreeMB: 300})
	if h.Healthy {
		t.Fatal("expected unhealthy")
	}
	if h.Warning() == "" {
		t.Error("expected warning text")
	}

	h = CheckHealth(Snapshot{TotalMB: 8000, UsedMB: 2000, FreeMB: 6000})
	if !h.Healthy || h.Warning() != "" {
		t.Errorf("expected healthy with no warning, got %+v %q", h, h.Warning())
	}
}
