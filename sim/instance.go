package sim

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// Instance is a host with fixed cpu/mem capacity that admits tasks while it
// has headroom. Assigned tasks are kept in assignment order, keyed by the
// task pointer, so unexpanded templates (TaskID 0) never collide.
//
// Invariant: FreeCPU() == CPU() - Σ assigned.CPU and
// FreeMem() == Mem() - Σ assigned.Mem, both >= 0.
//
// Thread-safety: NOT thread-safe. All methods must be called from the same goroutine.
type Instance struct {
	cpu     int64
	mem     int64
	freeCPU int64
	freeMem int64
	tasks   *orderedmap.OrderedMap[*Task, struct{}]
}

// NewInstance creates an empty instance. Panics if cpu or mem is not positive.
func NewInstance(cpu, mem int64) *Instance {
	if cpu <= 0 || mem <= 0 {
		panic(fmt.Sprintf("instance capacity must be positive, got cpu=%d mem=%d", cpu, mem))
	}
	return &Instance{
		cpu:     cpu,
		mem:     mem,
		freeCPU: cpu,
		freeMem: mem,
		tasks:   orderedmap.NewOrderedMap[*Task, struct{}](),
	}
}

// CPU returns total cpu capacity.
func (i *Instance) CPU() int64 { return i.cpu }

// Mem returns total memory capacity.
func (i *Instance) Mem() int64 { return i.mem }

// FreeCPU returns unassigned cpu.
func (i *Instance) FreeCPU() int64 { return i.freeCPU }

// FreeMem returns unassigned memory.
func (i *Instance) FreeMem() int64 { return i.freeMem }

// UsedCPU returns assigned cpu.
func (i *Instance) UsedCPU() int64 { return i.cpu - i.freeCPU }

// UsedMem returns assigned memory.
func (i *Instance) UsedMem() int64 { return i.mem - i.freeMem }

// TaskCount returns the number of assigned tasks.
func (i *Instance) TaskCount() int { return i.tasks.Len() }

// Tasks returns the assigned tasks in assignment order.
// The slice is a snapshot; mutating it does not affect the instance.
func (i *Instance) Tasks() []*Task {
	out := make([]*Task, 0, i.tasks.Len())
	for el := i.tasks.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// HasTask reports whether a task with the given ID is assigned here.
func (i *Instance) HasTask(id TaskID) bool {
	for el := i.tasks.Front(); el != nil; el = el.Next() {
		if el.Key.ID == id {
			return true
		}
	}
	return false
}

// Holds reports whether t itself is assigned here.
func (i *Instance) Holds(t *Task) bool {
	_, ok := i.tasks.Get(t)
	return ok
}

// HasTaskNamed reports whether any assigned task is called name.
func (i *Instance) HasTaskNamed(name string) bool {
	for el := i.tasks.Front(); el != nil; el = el.Next() {
		if el.Key.Name == name {
			return true
		}
	}
	return false
}

// fitsCPU and fitsMem use strict inequality: a task asking for exactly the
// remaining amount does not fit.
func (i *Instance) fitsCPU(t *Task) bool { return t.CPU < i.freeCPU }

func (i *Instance) fitsMem(t *Task) bool { return t.Mem < i.freeMem }

// Accept reports whether t fits the remaining headroom and its placement
// predicate allows this instance.
func (i *Instance) Accept(t *Task) bool {
	return i.fitsCPU(t) && i.fitsMem(t) && t.Accept(i)
}

// Exhausted returns the resources that currently block t, cpu before mem.
// The task's placement predicate is not consulted.
func (i *Instance) Exhausted(t *Task) []Resource {
	var out []Resource
	if !i.fitsCPU(t) {
		out = append(out, ResourceCPU)
	}
	if !i.fitsMem(t) {
		out = append(out, ResourceMem)
	}
	return out
}

// Deploy assigns t if Accept(t) holds and t is not already assigned here.
// Otherwise it does nothing; callers check Accept first.
func (i *Instance) Deploy(t *Task) {
	if i.Holds(t) || !i.Accept(t) {
		return
	}
	i.freeCPU -= t.CPU
	i.freeMem -= t.Mem
	i.tasks.Set(t, struct{}{})
}

// Undeploy removes t and returns its demand to the free pool. Undeploying a
// task that is not assigned here, including an equal copy, is a no-op.
func (i *Instance) Undeploy(t *Task) {
	if !i.tasks.Delete(t) {
		return
	}
	i.freeCPU += t.CPU
	i.freeMem += t.Mem
}

// Reset undeploys tasks, most recent first, until none remain.
func (i *Instance) Reset() {
	for el := i.tasks.Back(); el != nil; el = i.tasks.Back() {
		i.Undeploy(el.Key)
	}
}

// String renders capacity and usage, e.g. "instance(cpu 1024/4096, mem 128/7602, 1 tasks)".
func (i *Instance) String() string {
	return fmt.Sprintf("instance(cpu %d/%d, mem %d/%d, %d tasks)",
		i.UsedCPU(), i.cpu, i.UsedMem(), i.mem, i.TaskCount())
}
