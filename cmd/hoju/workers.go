package main

import (
	"runtime"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/hoju/config"
)

// bytesPerRound is a generous estimate of one decoded round, including the
// scratch state an aggregation worker keeps for it.
const bytesPerRound = 128 << 10

// sizeWorkers picks a worker count: the configured one if set, else one
// per CPU, limited so that every worker's chunk fits in the allowed share
// of system memory.
func sizeWorkers(configured int, memFraction float64, totalMem uint64, cpus, chunkSize int) int {
	if configured > 0 {
		return configured
	}
	perWorker := float64(max(chunkSize, 1) * bytesPerRound)
	byMem := int(memFraction * float64(totalMem) / perWorker)
	return lo.Clamp(byMem, 1, max(cpus, 1))
}

func (a *app) workers() int {
	n := sizeWorkers(a.cfg.GetInt(config.ConfigWorkers), a.cfg.GetFloat64(config.ConfigMaxMemoryFraction),
		memory.TotalMemory(), runtime.NumCPU(), a.cfg.GetInt(config.ConfigDatasetChunkSize))
	log.Debug().Int("workers", n).Msg("sized-workers")
	return n
}
