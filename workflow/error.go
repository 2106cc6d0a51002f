package workflow

import "fmt"

// StepError is the terminal failure of one step after its retry budget is
// spent. It wraps the last underlying cause (executor error, timeout, or
// schema violation).
type StepError struct {
	StepID   string
	Agent    string
	Attempts int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed after %d attempt(s) (agent %s): %v",
		e.StepID, e.Attempts, e.Agent, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
