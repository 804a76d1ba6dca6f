package register

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials is returned before anything external is touched
// when neither an activation key nor a username/password pair is given.
var ErrMissingCredentials = errors.New("missing credentials: either an activation key or a username and password pair is required")

// ExecError is returned when the registration command exits non-zero.
// It carries the command line and the captured output for the failure
// report.
type ExecError struct {
	Cmdline  string
	Output   string
	ExitCode int
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("'%s' failed with exit code %d", e.Cmdline, e.ExitCode)
	if output := strings.TrimSpace(e.Output); output != "" {
		msg += ": " + output
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
