package pool

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
)

// worker wraps one long-lived worker process: a forkless re-exec of this
// same binary under its hidden "lucien-worker" subcommand. Stdin/stdout
// carry newline-delimited JSON tasks and results; stderr is discarded here,
// by the process that owns the exec.Cmd, rather than by the worker
// suppressing its own file descriptor.
type worker struct {
	cmd       *exec.Cmd
	enc       *json.Encoder
	stdin     io.WriteCloser
	resultCh  chan TaskResult
	errCh     chan error
	tasksDone int
}

// spawnWorker starts a fresh worker process at binaryPath (normally
// os.Args[0]) and begins reading its results in the background.
func spawnWorker(binaryPath string) (*worker, error) {
	cmd := exec.Command(binaryPath, "lucien-worker")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("pool: worker stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pool: worker stdout pipe: %w", err)
	}
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pool: start worker: %w", err)
	}

	w := &worker{
		cmd:      cmd,
		enc:      json.NewEncoder(stdin),
		stdin:    stdin,
		resultCh: make(chan TaskResult, 1),
		errCh:    make(chan error, 1),
	}

	go w.readResults(stdout)
	return w, nil
}

func (w *worker) readResults(stdout io.Reader) {
	dec := json.NewDecoder(stdout)
	for {
		var res TaskResult
		if err := dec.Decode(&res); err != nil {
			w.errCh <- err
			return
		}
		w.resultCh <- res
	}
}

// submit writes one task to the worker's stdin. It does not wait for a
// result; the caller polls resultCh/errCh.
func (w *worker) submit(t Task) error {
	if err := w.enc.Encode(t); err != nil {
		return fmt.Errorf("pool: submit task to worker: %w", err)
	}
	return nil
}

// abandon stops interacting with the worker without waiting for it to
// exit. Used for hung workers: the process may still be running, but the
// supervisor no longer trusts or tracks it. Matches the pool's documented
// behavior of leaving hung processes to be reclaimed by the OS rather than
// blocking the supervisor on a kill that itself might hang.
func (w *worker) abandon() {
	w.stdin.Close()
}

// stop closes stdin (signaling the worker to exit its read loop after its
// current task) and releases the process. Used for normal recycling.
func (w *worker) stop() {
	w.stdin.Close()
	if w.cmd != nil {
		go w.cmd.Wait()
	}
}
