package optimize

import "fmt"

// Op names the collaborator call that failed inside an iteration.
type Op string

const (
	OpRewrite Op = "rewrite"
	OpScore   Op = "score"
)

// Error reports a collaborator failure during an iteration.
type Error struct {
	Iteration int
	Op        Op
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("optimization iteration %d: %s failed: %v", e.Iteration, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
