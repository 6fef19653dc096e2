package sim

// TaskArena owns the task copies produced by service expansion and gives each
// a stable TaskID at creation time. Identical copies of one template are told
// apart by ID in placement traces.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type TaskArena struct {
	next  TaskID
	tasks map[TaskID]*Task
}

// NewTaskArena creates an empty arena. The first ID handed out is 1.
func NewTaskArena() *TaskArena {
	return &TaskArena{tasks: make(map[TaskID]*Task)}
}

// Clone records a new copy of template under a fresh ID and returns it.
func (a *TaskArena) Clone(template *Task) *Task {
	a.next++
	t := template.withID(a.next)
	a.tasks[t.ID] = t
	return t
}

// Get returns the task recorded under id.
func (a *TaskArena) Get(id TaskID) (*Task, bool) {
	t, ok := a.tasks[id]
	return t, ok
}

// Len returns the number of live tasks.
func (a *TaskArena) Len() int {
	return len(a.tasks)
}

// Reset discards every recorded task. IDs keep increasing after a reset so a
// stale ID can never alias a new task.
func (a *TaskArena) Reset() {
	a.tasks = make(map[TaskID]*Task)
}
