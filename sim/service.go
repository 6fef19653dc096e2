package sim

import "fmt"

// Service is a task template replicated Count times, placed with one Strategy.
type Service struct {
	name     string
	count    int
	task     *Task
	strategy StrategyKind
}

// ServiceOption customizes a Service at construction.
type ServiceOption func(*Service)

// WithName overrides the display name (defaults to the template's name).
func WithName(name string) ServiceOption {
	return func(s *Service) { s.name = name }
}

// WithStrategy selects the placement strategy (defaults to DefaultStrategy).
func WithStrategy(kind StrategyKind) ServiceOption {
	return func(s *Service) { s.strategy = kind }
}

// NewService creates a service of count copies of task.
// Panics if count is not positive, task is nil, or the strategy is unknown.
func NewService(count int, task *Task, opts ...ServiceOption) *Service {
	if task == nil {
		panic("NewService: nil task")
	}
	if count <= 0 {
		panic(fmt.Sprintf("NewService(%q): count must be positive, got %d", task.Name, count))
	}
	s := &Service{name: task.Name, count: count, task: task, strategy: DefaultStrategy}
	for _, opt := range opts {
		opt(s)
	}
	if s.strategy == "" {
		s.strategy = DefaultStrategy
	}
	if !IsValidStrategy(string(s.strategy)) {
		panic(fmt.Sprintf("NewService(%q): unknown strategy %q", s.name, s.strategy))
	}
	return s
}

// Name returns the display name.
func (s *Service) Name() string { return s.name }

// Template returns the task every copy is made from.
func (s *Service) Template() *Task { return s.task }

// Size returns the number of task copies.
func (s *Service) Size() int { return s.count }

// Strategy returns the placement strategy kind.
func (s *Service) Strategy() StrategyKind { return s.strategy }

// CPU returns the aggregate cpu demand of all copies.
func (s *Service) CPU() int64 { return int64(s.count) * s.task.CPU }

// Mem returns the aggregate memory demand of all copies.
func (s *Service) Mem() int64 { return int64(s.count) * s.task.Mem }

// Tasks expands the service into Size() fresh copies recorded in arena.
// Every call returns new copies with new IDs.
func (s *Service) Tasks(arena *TaskArena) []*Task {
	out := make([]*Task, s.count)
	for n := range out {
		out[n] = arena.Clone(s.task)
	}
	return out
}
