package level

import (
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single script evaluation.
const EvalTimeout = 5 * time.Second

// evalResult passes evaluation output through the worker channel.
type evalResult struct {
	level  *Level
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, failing after
// EvalTimeout. The generation counter discards stale results when a
// newer evaluation has started while this one was running.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*Level, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.level, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
