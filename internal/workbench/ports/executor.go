package ports

import (
	"context"
)

// ProcessExecutor is the port to the out-of-process tooling that runs a saved
// process. The designer only asks it to start; execution state is not tracked here.
type ProcessExecutor interface {
	Start(ctx context.Context, processID string) (executionID string, err error)
}
