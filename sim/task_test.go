package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTask_PlainAcceptsAnyInstance(t *testing.T) {
	arena := NewTaskArena()
	inst := NewInstance(100, 100)
	inst.Deploy(arena.Clone(NewTask("web", 1, 1)))

	assert.True(t, NewTask("web", 1, 1).Accept(inst))
	assert.True(t, inst.Accept(NewTask("web", 1, 1)), "plain tasks may share an instance")
}

func TestDistinctTask_RejectsSameNameOnInstance(t *testing.T) {
	// GIVEN an instance running one consul copy and one unrelated task
	arena := NewTaskArena()
	inst := NewInstance(100, 100)
	inst.Deploy(arena.Clone(NewTask("web", 1, 1)))
	first := arena.Clone(NewDistinctTask("consul", 1, 1))
	inst.Deploy(first)

	// THEN another consul copy is not eligible, but other names are
	assert.False(t, inst.Accept(NewDistinctTask("consul", 1, 1)))
	assert.True(t, inst.Accept(NewDistinctTask("nomad", 1, 1)))

	// WHEN the first copy leaves, the live state is re-read
	inst.Undeploy(first)
	assert.True(t, inst.Accept(NewDistinctTask("consul", 1, 1)))
}

func TestDistinctTask_DeployTwiceKeepsOneCopy(t *testing.T) {
	arena := NewTaskArena()
	inst := NewInstance(100, 100)
	for _, task := range NewService(2, NewDistinctTask("consul", 1, 1)).Tasks(arena) {
		inst.Deploy(task)
	}
	assert.Equal(t, 1, inst.TaskCount())
}

func TestTask_String(t *testing.T) {
	assert.Equal(t, "Task web: (1024 cpu, 512 mem)", NewTask("web", 1024, 512).String())
	assert.Equal(t, "DistinctTask consul: (256 cpu, 128 mem)", NewDistinctTask("consul", 256, 128).String())
}

func TestTask_Distinct(t *testing.T) {
	assert.False(t, NewTask("a", 1, 1).Distinct())
	assert.True(t, NewDistinctTask("a", 1, 1).Distinct())
	assert.Equal(t, "DistinctTask", NewDistinctTask("a", 1, 1).Predicate().Kind())
}

func TestNewTask_NonPositiveDemand_Panics(t *testing.T) {
	assert.Panics(t, func() { NewTask("a", 0, 1) })
	assert.Panics(t, func() { NewDistinctTask("a", 1, 0) })
}

func TestTaskArena_AssignsIncreasingIDs(t *testing.T) {
	arena := NewTaskArena()
	tmpl := NewTask("web", 1, 1)

	a := arena.Clone(tmpl)
	b := arena.Clone(tmpl)

	assert.Equal(t, TaskID(1), a.ID)
	assert.Equal(t, TaskID(2), b.ID)
	assert.Equal(t, TaskID(0), tmpl.ID, "template is not modified")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, arena.Len())

	got, ok := arena.Get(a.ID)
	assert.True(t, ok)
	assert.Same(t, a, got)

	// IDs keep increasing after a reset.
	arena.Reset()
	assert.Equal(t, 0, arena.Len())
	_, ok = arena.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, TaskID(3), arena.Clone(tmpl).ID)
}
