package sim

import (
	"fmt"
	"math/rand"
	"sort"
)

// StrategyKind names a placement strategy.
type StrategyKind string

const (
	StrategyRandom      StrategyKind = "random"
	StrategyLeastLoaded StrategyKind = "least-loaded"
	StrategyBinpackMem  StrategyKind = "binpack-mem"
	StrategyBinpackCPU  StrategyKind = "binpack-cpu"
)

// DefaultStrategy is used by services that do not choose one.
const DefaultStrategy = StrategyLeastLoaded

// validStrategies is shared by IsValidStrategy and NewStrategy.
var validStrategies = map[StrategyKind]bool{
	"":                  true, // empty defaults to least-loaded
	StrategyRandom:      true,
	StrategyLeastLoaded: true,
	StrategyBinpackMem:  true,
	StrategyBinpackCPU:  true,
}

// IsValidStrategy returns true if name is a recognized strategy (or empty).
func IsValidStrategy(name string) bool {
	return validStrategies[StrategyKind(name)]
}

// ValidStrategyNames returns the recognized strategy names, sorted.
func ValidStrategyNames() []string {
	names := make([]string, 0, len(validStrategies))
	for k := range validStrategies {
		if k != "" {
			names = append(names, string(k))
		}
	}
	sort.Strings(names)
	return names
}

// Strategy picks the instance that receives the next task.
// Select must not mutate candidates and returns nil iff candidates is empty.
// A Strategy is created fresh for every Cluster.Deploy call.
type Strategy interface {
	Select(candidates []*Instance) *Instance
}

// RandomStrategy samples uniformly from the candidates.
type RandomStrategy struct {
	rng *rand.Rand
}

// Select implements Strategy for RandomStrategy.
func (r *RandomStrategy) Select(candidates []*Instance) *Instance {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[r.rng.Intn(len(candidates))]
}

// minScoreStrategy picks instances with the minimum score. It caches the
// whole tied set and hands the cached instances out one per call, in
// candidate order, before scanning the candidates again.
type minScoreStrategy struct {
	score func(*Instance) int64
	cache []*Instance
}

// Select implements Strategy for the scoring strategies.
func (m *minScoreStrategy) Select(candidates []*Instance) *Instance {
	if len(m.cache) == 0 {
		m.cache = m.minimal(candidates)
	}
	if len(m.cache) == 0 {
		return nil
	}
	next := m.cache[0]
	m.cache = m.cache[1:]
	return next
}

func (m *minScoreStrategy) minimal(candidates []*Instance) []*Instance {
	if len(candidates) == 0 {
		return nil
	}
	best := m.score(candidates[0])
	for _, inst := range candidates[1:] {
		if s := m.score(inst); s < best {
			best = s
		}
	}
	var tied []*Instance
	for _, inst := range candidates {
		if m.score(inst) == best {
			tied = append(tied, inst)
		}
	}
	return tied
}

// NewLeastLoaded prefers instances running the fewest tasks.
func NewLeastLoaded() Strategy {
	return &minScoreStrategy{score: func(i *Instance) int64 { return int64(i.TaskCount()) }}
}

// NewBinpackMem prefers instances with the least free memory.
func NewBinpackMem() Strategy {
	return &minScoreStrategy{score: (*Instance).FreeMem}
}

// NewBinpackCPU prefers instances with the least free cpu.
func NewBinpackCPU() Strategy {
	return &minScoreStrategy{score: (*Instance).FreeCPU}
}

// NewRandom samples with rng. Panics if rng is nil.
func NewRandom(rng *rand.Rand) Strategy {
	if rng == nil {
		panic("NewRandom: nil rng")
	}
	return &RandomStrategy{rng: rng}
}

// NewStrategy creates a strategy by kind. Empty kind defaults to least-loaded.
// rng is only used by the random strategy. Panics on unrecognized kinds.
func NewStrategy(kind StrategyKind, rng *rand.Rand) Strategy {
	if !validStrategies[kind] {
		panic(fmt.Sprintf("unknown strategy %q", kind))
	}
	switch kind {
	case "", StrategyLeastLoaded:
		return NewLeastLoaded()
	case StrategyRandom:
		return NewRandom(rng)
	case StrategyBinpackMem:
		return NewBinpackMem()
	case StrategyBinpackCPU:
		return NewBinpackCPU()
	default:
		panic(fmt.Sprintf("unhandled strategy %q", kind))
	}
}
