package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/rampet/config"
)

// csvFile appends records to one CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

func (c *csvFile) close() error {
	if c == nil || c.f == nil {
		return nil
	}
	return c.f.Close()
}

// OutputManager handles session output with CSV logging.
type OutputManager struct {
	dir        string
	telemetry  *csvFile
	perf       *csvFile
	milestones *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	var err error
	if om.telemetry, err = createCSV(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createCSV(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.milestones, err = createCSV(dir, "milestones.csv"); err != nil {
		om.Close()
		return nil, err
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteMilestone writes a milestone record to milestones.csv.
func (om *OutputManager) WriteMilestone(m Milestone) error {
	if om == nil {
		return nil
	}
	if err := om.milestones.write([]Milestone{m}); err != nil {
		return fmt.Errorf("writing milestone: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.perf, om.milestones} {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
