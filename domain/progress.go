package domain

// ProgressManager creates progress tasks for long-running operations. It is
// a no-op in non-interactive environments.
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks the progress of a single task.
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
