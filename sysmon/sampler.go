package sysmon

import (
	"errors"
	"os"

	"github.com/pbnjay/memory"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const bytesPerMB = 1024 * 1024

// Reading is one raw host memory sample in MB.
type Reading struct {
	TotalMB int
	UsedMB  int
	FreeMB  int // available to new allocations, not just unused pages
}

// Sampler queries host memory counters.
type Sampler interface {
	Memory() (Reading, error)
	ProcessRSS() (int, error)
}

// GopsutilSampler reads host and process memory through gopsutil.
type GopsutilSampler struct {
	pid int32
}

// NewGopsutilSampler creates a sampler for the current process.
func NewGopsutilSampler() *GopsutilSampler {
	return &GopsutilSampler{pid: int32(os.Getpid())}
}

// Memory returns total/used/available RAM.
func (s *GopsutilSampler) Memory() (Reading, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		TotalMB: toMB(v.Total),
		UsedMB:  toMB(v.Used),
		FreeMB:  toMB(v.Available),
	}, nil
}

// ProcessRSS returns the resident set size of this process.
func (s *GopsutilSampler) ProcessRSS() (int, error) {
	p, err := process.NewProcess(s.pid)
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return toMB(info.RSS), nil
}

var errNoFallbackReading = errors.New("sysmon: host memory size unknown")

// FallbackSampler uses pbnjay/memory, which reads the same counters through
// a smaller code path and works on platforms gopsutil cannot parse.
type FallbackSampler struct{}

// Memory returns total and free RAM; used is derived.
func (FallbackSampler) Memory() (Reading, error) {
	total := memory.TotalMemory()
	if total == 0 {
		return Reading{}, errNoFallbackReading
	}
	free := memory.FreeMemory()
	if free > total {
		free = total
	}
	return Reading{
		TotalMB: toMB(total),
		UsedMB:  toMB(total - free),
		FreeMB:  toMB(free),
	}, nil
}

// ProcessRSS is not available from pbnjay/memory.
func (FallbackSampler) ProcessRSS() (int, error) {
	return 0, errors.ErrUnsupported
}

func toMB(b uint64) int {
	return int(b / bytesPerMB)
}
