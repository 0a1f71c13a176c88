package renderer

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

// DefaultBandMultiplier is the number of bands per hardware thread
const DefaultBandMultiplier = 3

// HardwareThreads returns the number of logical CPUs, falling back to runtime.NumCPU
func HardwareThreads() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// BandCount returns how many bands a pass is split into for the given multiplier
// and thread count. Non-positive inputs fall back to the defaults.
func BandCount(multiplier, threads int) int {
	if multiplier <= 0 {
		multiplier = DefaultBandMultiplier
	}
	if threads <= 0 {
		threads = HardwareThreads()
	}
	return multiplier * threads
}

// forkJoin runs fn once per band, each on its own goroutine, and returns when all have finished.
// No band result is visible to the caller before every band is done.
func forkJoin(bands []Band, fn func(Band)) {
	var g errgroup.Group
	for _, band := range bands {
		band := band
		g.Go(func() error {
			fn(band)
			return nil
		})
	}
	// Band workers cannot fail; Wait is the join barrier
	_ = g.Wait()
}
