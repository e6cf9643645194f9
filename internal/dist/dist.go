// Package dist provides the distributed coordination capability. Only the
// root rank materializes recorded segments; every rank participates in
// run/reset. The orchestrator branches on IsRoot only.
package dist

import (
	"os"
	"strconv"
)

// Coordinator identifies this process among cooperating processes.
type Coordinator interface {
	Rank() int
	IsRoot() bool
}

// RootRank is the rank designated to materialize results.
const RootRank = 0

// Local is the no-coordination case: a single process that is always root.
type Local struct{}

func (Local) Rank() int    { return RootRank }
func (Local) IsRoot() bool { return true }

// Env reads the rank assigned by a multi-process launcher.
type Env struct {
	rank int
}

// rank environment variables checked in order, matching common launchers.
var rankVars = []string{"SPIKELAB_RANK", "OMPI_COMM_WORLD_RANK", "PMI_RANK"}

// FromEnv builds a coordinator from launcher environment variables. With no
// rank variable set the process behaves as root.
func FromEnv() Env {
	for _, v := range rankVars {
		if s, ok := os.LookupEnv(v); ok {
			if r, err := strconv.Atoi(s); err == nil && r >= 0 {
				return Env{rank: r}
			}
		}
	}
	return Env{rank: RootRank}
}

func (e Env) Rank() int    { return e.rank }
func (e Env) IsRoot() bool { return e.rank == RootRank }

// Fixed is a coordinator with an explicit rank, used in tests and by
// launchers that pass ranks on the command line.
type Fixed struct {
	R int
}

func (f Fixed) Rank() int    { return f.R }
func (f Fixed) IsRoot() bool { return f.R == RootRank }
