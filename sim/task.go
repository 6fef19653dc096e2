package sim

import "fmt"

// TaskID identifies one placed copy of a task. IDs are handed out by a
// TaskArena; the zero value is reserved for templates that were never
// expanded.
type TaskID uint64

// PlacementPredicate decides whether a task may be placed on an instance,
// beyond the resource check done by Instance.Accept.
// Implementations must read the instance's live state on every call.
type PlacementPredicate interface {
	Accept(task *Task, inst *Instance) bool
	// Kind names the predicate for display ("Task", "DistinctTask").
	Kind() string
}

// Plain accepts every instance.
type Plain struct{}

// Accept implements PlacementPredicate for Plain.
func (Plain) Accept(*Task, *Instance) bool { return true }

// Kind implements PlacementPredicate for Plain.
func (Plain) Kind() string { return "Task" }

// Distinct rejects instances already running a task with the same name,
// so at most one copy of a named workload lands on each host.
type Distinct struct{}

// Accept implements PlacementPredicate for Distinct.
func (Distinct) Accept(task *Task, inst *Instance) bool {
	return !inst.HasTaskNamed(task.Name)
}

// Kind implements PlacementPredicate for Distinct.
func (Distinct) Kind() string { return "DistinctTask" }

// Task is a unit of demand: a name and cpu/mem requirements in raw units
// (cpu in 1/VCPU shares, mem in MB). Tasks are immutable once created.
type Task struct {
	ID   TaskID
	Name string
	CPU  int64
	Mem  int64

	predicate PlacementPredicate
}

// NewTask creates a task template that may be placed on any instance with
// enough headroom. Panics if cpu or mem is not positive.
func NewTask(name string, cpu, mem int64) *Task {
	return newTask(name, cpu, mem, Plain{})
}

// NewDistinctTask creates a task template that never shares an instance with
// another task of the same name. Panics if cpu or mem is not positive.
func NewDistinctTask(name string, cpu, mem int64) *Task {
	return newTask(name, cpu, mem, Distinct{})
}

func newTask(name string, cpu, mem int64, predicate PlacementPredicate) *Task {
	if cpu <= 0 || mem <= 0 {
		panic(fmt.Sprintf("task %q: cpu and mem must be positive, got cpu=%d mem=%d", name, cpu, mem))
	}
	return &Task{Name: name, CPU: cpu, Mem: mem, predicate: predicate}
}

// Accept reports whether the task's placement predicate allows inst.
// Resource headroom is not checked here; see Instance.Accept.
func (t *Task) Accept(inst *Instance) bool {
	return t.predicate.Accept(t, inst)
}

// Distinct reports whether the task forbids co-location with same-named tasks.
func (t *Task) Distinct() bool {
	_, ok := t.predicate.(Distinct)
	return ok
}

// Predicate returns the task's placement predicate.
func (t *Task) Predicate() PlacementPredicate {
	return t.predicate
}

// String renders the task as "Task web: (1024 cpu, 1024 mem)".
func (t *Task) String() string {
	return fmt.Sprintf("%s %s: (%d cpu, %d mem)", t.predicate.Kind(), t.Name, t.CPU, t.Mem)
}

// withID returns a copy of t carrying id. The predicate is shared; it is stateless.
func (t *Task) withID(id TaskID) *Task {
	c := *t
	c.ID = id
	return &c
}
