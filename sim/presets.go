package sim

import (
	"fmt"
	"sort"
)

// presetInstances is the pool used by the built-in presets: 100 instances
// with 4 vCPU and about 8GB of memory each.
var presetInstances = []InstanceGroup{{Count: 100, CPU: 4 * VCPU, Mem: 7602}}

// presets are built-in topologies. "example" places the web service with
// least-loaded; "simulate" places everything but consul randomly and is meant
// to be run through many trials.
var presets = map[string]Topology{
	"example": {
		Seed:      42,
		Instances: presetInstances,
		Services: []ServiceConfig{
			{Count: 100, Task: TaskConfig{Name: "consul", CPU: VCPU / 4, Mem: 128, Distinct: true}},
			{Count: 213, Task: TaskConfig{Name: "web", CPU: VCPU, Mem: 1024}, Strategy: string(StrategyLeastLoaded)},
			{Name: "tiny", Count: 213, Task: TaskConfig{Name: "web", CPU: VCPU / 8, Mem: 64}, Strategy: string(StrategyRandom)},
		},
	},
	"simulate": {
		Seed:      42,
		Instances: presetInstances,
		Services: []ServiceConfig{
			{Count: 100, Task: TaskConfig{Name: "consul", CPU: VCPU / 4, Mem: 128, Distinct: true}},
			{Count: 213, Task: TaskConfig{Name: "web", CPU: VCPU, Mem: 1024}, Strategy: string(StrategyRandom)},
			{Count: 213, Task: TaskConfig{Name: "tiny", CPU: VCPU / 8, Mem: 64}, Strategy: string(StrategyRandom)},
		},
	},
}

// PresetNames returns the built-in topology names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of the named built-in topology.
func Preset(name string) (*Topology, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	t := p
	t.Instances = append([]InstanceGroup(nil), p.Instances...)
	t.Services = append([]ServiceConfig(nil), p.Services...)
	return &t, nil
}
