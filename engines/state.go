package engines

type State string

const (
	StateIdle      State = "IDLE"
	StatePlanning  State = "PLANNING"
	StatePlanned   State = "PLANNED"
	StateExecuting State = "EXECUTING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)
