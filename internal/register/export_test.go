package register

import (
	"context"
	"os/exec"
	"time"
)

// MockExecCommand replaces the exec.CommandContext() wrapper and returns
// a function that can be called to restore the original.
func MockExecCommand(mock func(ctx context.Context, name string, arg ...string) *exec.Cmd) (restore func()) {
	original := execCommand
	execCommand = mock
	return func() {
		execCommand = original
	}
}

// MockChannelAPI replaces the API constructor and returns a function
// that can be called to restore the original.
func MockChannelAPI(mock func(hostname string, timeout time.Duration) (ChannelAPI, error)) (restore func()) {
	original := newChannelAPI
	newChannelAPI = mock
	return func() {
		newChannelAPI = original
	}
}

var UnionChannels = unionChannels
