package main

import (
	"testing"
	"time"

	"github.com/pthm-cable/rampet/config"
)

func TestParamVector_RoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if diff := back[i] - raw[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("param %s: %v != %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVector_ScheduleClamps(t *testing.T) {
	pv := NewParamVector()
	s := pv.Schedule([]float64{-5, 10000})
	if s.IntervalSec != 1 || s.PortionMB != 500 {
		t.Errorf("expected clamped schedule, got %+v", s)
	}
}

func TestEvaluate_StarvingScheduleScoresWorse(t *testing.T) {
	cfg := config.Default()
	fe := NewFitnessEvaluator(cfg, []int64{1, 2}, 2*time.Minute, 8192, 0.01)

	starve, starveRec := fe.Evaluate(Schedule{IntervalSec: 60, PortionMB: 10})
	fed, fedRec := fe.Evaluate(Schedule{IntervalSec: 10, PortionMB: 30})

	if starveRec.SurvivedSec >= fe.horizon.Seconds() {
		t.Errorf("10 MB a minute should starve, survived %.0fs", starveRec.SurvivedSec)
	}
	if fedRec.SurvivedSec != fe.horizon.Seconds() {
		t.Errorf("30 MB every 10s should survive the horizon, survived %.0fs", fedRec.SurvivedSec)
	}
	if fed >= starve {
		t.Errorf("surviving schedule should score better: fed=%.2f starve=%.2f", fed, starve)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	cfg := config.Default()
	fe := NewFitnessEvaluator(cfg, []int64{7}, time.Minute, 8192, 0.01)
	s := Schedule{IntervalSec: 5, PortionMB: 20}

	a, _ := fe.Evaluate(s)
	b, _ := fe.Evaluate(s)
	if a != b {
		t.Errorf("same schedule and seed should score the same: %v != %v", a, b)
	}
}
