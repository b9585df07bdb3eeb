package observ

import (
	"strings"
	"testing"
)

func TestTimerReportAccumulatesPhases(t *testing.T) {
	tm := NewTimer()
	resolve := tm.Begin("resolve")
	tm.End(resolve, "3 decls")
	check := tm.Begin("check")
	tm.End(check, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "resolve" || report.Phases[0].Note != "3 decls" {
		t.Errorf("first phase = %+v", report.Phases[0])
	}
	var sum float64
	for _, p := range report.Phases {
		sum += p.DurationMS
	}
	if report.TotalMS < sum-0.001 || report.TotalMS > sum+0.001 {
		t.Errorf("total %.3f does not match phase sum %.3f", report.TotalMS, sum)
	}
}

func TestTimerEndOutOfRangeIsIgnored(t *testing.T) {
	tm := NewTimer()
	tm.End(0, "nothing started")
	tm.End(-1, "")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Errorf("phases = %d, want 0", len(got.Phases))
	}
}

func TestTimerSummaryIncludesTotal(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("check")
	tm.End(idx, "")
	s := tm.Summary()
	if !strings.Contains(s, "check") || !strings.Contains(s, "total") {
		t.Errorf("summary missing entries:\n%s", s)
	}
}
