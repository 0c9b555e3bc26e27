package sysmon

import "fmt"

// Health thresholds used for user-facing warnings. Slightly looser than the
// pressure check so a warning appears before pressure is reported.
const (
	HealthyFreeMB       = 512
	HealthyUsagePercent = 90.0
)

// Health is a host memory health summary.
type Health struct {
	UsagePercent float64
	FreeMB       int
	TotalMB      int
	ProcessMB    int
	Healthy      bool
}

// CheckHealth summarizes a snapshot.
func CheckHealth(s Snapshot) Health {
	usage := s.UsagePercent()
	return Health{
		UsagePercent: usage,
		FreeMB:       s.FreeMB,
		TotalMB:      s.TotalMB,
		ProcessMB:    s.ProcessRSSMB,
		Healthy:      s.FreeMB > HealthyFreeMB && usage < HealthyUsagePercent,
	}
}

// Warning returns a message when the host is unhealthy, or "".
func (h Health) Warning() string {
	if h.Healthy {
		return ""
	}
	if h.FreeMB < HealthyFreeMB {
		return fmt.Sprintf("WARNING: only %d MB RAM free", h.FreeMB)
	}
	if h.UsagePercent > HealthyUsagePercent {
		return fmt.Sprintf("WARNING: RAM usage at %.1f%%", h.UsagePercent)
	}
	return ""
}
