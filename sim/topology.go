package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Topology describes a cluster and the services to place on it, loadable
// from a YAML file.
type Topology struct {
	Seed      int64           `yaml:"seed"`
	Instances []InstanceGroup `yaml:"instances"`
	Services  []ServiceConfig `yaml:"services"`
	// ShuffleInstances interleaves instance groups in a seed-determined order.
	// Scoring strategies break ties by instance order, so this matters for
	// heterogeneous pools.
	ShuffleInstances bool `yaml:"shuffle_instances,omitempty"`
}

// InstanceGroup is Count identical instances.
type InstanceGroup struct {
	Count int         `yaml:"count"`
	CPU   CPUQuantity `yaml:"cpu"`
	Mem   int64       `yaml:"mem"`
}

// ServiceConfig configures one Service.
type ServiceConfig struct {
	Name     string     `yaml:"name,omitempty"`
	Count    int        `yaml:"count"`
	Task     TaskConfig `yaml:"task"`
	Strategy string     `yaml:"strategy,omitempty"`
}

// TaskConfig configures a task template.
type TaskConfig struct {
	Name     string      `yaml:"name"`
	CPU      CPUQuantity `yaml:"cpu"`
	Mem      int64       `yaml:"mem"`
	Distinct bool        `yaml:"distinct,omitempty"`
}

// CPUQuantity is a cpu amount in raw units. In YAML it is either an integer
// of raw units or a string with a "vcpu" suffix ("4vcpu", "0.25vcpu").
type CPUQuantity int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *CPUQuantity) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cpu must be a scalar", value.Line)
	}
	if value.ShortTag() == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return err
		}
		*q = CPUQuantity(n)
		return nil
	}
	parsed, err := ParseCPUQuantity(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*q = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler. Whole vCPU amounts are written with
// the vcpu suffix; anything else as raw units.
func (q CPUQuantity) MarshalYAML() (interface{}, error) {
	if q > 0 && int64(q)%VCPU == 0 {
		return fmt.Sprintf("%dvcpu", int64(q)/VCPU), nil
	}
	return int64(q), nil
}

// ParseCPUQuantity parses "512" (raw units) or "0.5vcpu".
func ParseCPUQuantity(s string) (CPUQuantity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := strings.CutSuffix(s, "vcpu"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid cpu quantity %q", s)
		}
		return CPUQuantity(math.Round(f * VCPU)), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cpu quantity %q", s)
	}
	return CPUQuantity(n), nil
}

// LoadTopology reads and parses a YAML topology file.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	return ParseTopology(data)
}

// ParseTopology parses YAML with strict field checking: unknown keys are errors.
func ParseTopology(data []byte) (*Topology, error) {
	var t Topology
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	return &t, nil
}

// Validate checks every group and service and returns all problems found,
// combined with multierr.
func (t *Topology) Validate() error {
	var err error
	if len(t.Instances) == 0 {
		err = multierr.Append(err, fmt.Errorf("topology has no instances"))
	}
	for i, g := range t.Instances {
		if g.Count <= 0 {
			err = multierr.Append(err, fmt.Errorf("instances[%d]: count must be positive, got %d", i, g.Count))
		}
		if g.CPU <= 0 {
			err = multierr.Append(err, fmt.Errorf("instances[%d]: cpu must be positive, got %d", i, g.CPU))
		}
		if g.Mem <= 0 {
			err = multierr.Append(err, fmt.Errorf("instances[%d]: mem must be positive, got %d", i, g.Mem))
		}
	}
	for i, s := range t.Services {
		label := fmt.Sprintf("services[%d]", i)
		if s.Name != "" {
			label = fmt.Sprintf("services[%d] (%s)", i, s.Name)
		}
		if s.Count <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s: count must be positive, got %d", label, s.Count))
		}
		if s.Task.Name == "" {
			err = multierr.Append(err, fmt.Errorf("%s: task name is required", label))
		}
		if s.Task.CPU <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s: task cpu must be positive, got %d", label, s.Task.CPU))
		}
		if s.Task.Mem <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s: task mem must be positive, got %d", label, s.Task.Mem))
		}
		if !IsValidStrategy(s.Strategy) {
			err = multierr.Append(err, fmt.Errorf("%s: unknown strategy %q (valid: %s)",
				label, s.Strategy, strings.Join(ValidStrategyNames(), ", ")))
		}
	}
	return err
}

// InstanceCount returns the total number of instances across all groups.
func (t *Topology) InstanceCount() int {
	n := 0
	for _, g := range t.Instances {
		n += g.Count
	}
	return n
}

// Build validates the topology and creates its instances and services.
// When ShuffleInstances is set, rng's SubsystemTopology stream orders the pool;
// a nil rng is seeded from t.Seed.
func (t *Topology) Build(rng *PartitionedRNG) ([]*Instance, []*Service, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	instances := make([]*Instance, 0, t.InstanceCount())
	for _, g := range t.Instances {
		for n := 0; n < g.Count; n++ {
			instances = append(instances, NewInstance(int64(g.CPU), g.Mem))
		}
	}
	if t.ShuffleInstances {
		if rng == nil {
			rng = NewPartitionedRNG(NewSimulationKey(t.Seed))
		}
		r := rng.ForSubsystem(SubsystemTopology)
		r.Shuffle(len(instances), func(a, b int) {
			instances[a], instances[b] = instances[b], instances[a]
		})
	}

	services := make([]*Service, 0, len(t.Services))
	for _, s := range t.Services {
		var task *Task
		if s.Task.Distinct {
			task = NewDistinctTask(s.Task.Name, int64(s.Task.CPU), s.Task.Mem)
		} else {
			task = NewTask(s.Task.Name, int64(s.Task.CPU), s.Task.Mem)
		}
		opts := []ServiceOption{WithStrategy(StrategyKind(s.Strategy))}
		if s.Name != "" {
			opts = append(opts, WithName(s.Name))
		}
		services = append(services, NewService(s.Count, task, opts...))
	}
	return instances, services, nil
}
