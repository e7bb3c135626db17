package pool

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/jward/lucien/internal/extract"
	"github.com/jward/lucien/internal/sidecar"
)

// Serve is the worker process's main loop: decode one Task per line from
// stdin, run it through chain, write the (possibly truncated) text to
// store, and encode one TaskResult per line to stdout. It returns nil on a
// clean EOF (the supervisor closed stdin to recycle or stop this worker).
func Serve(chain *extract.Chain, store *sidecar.Store, stdin io.Reader, stdout io.Writer) error {
	dec := json.NewDecoder(stdin)
	enc := json.NewEncoder(stdout)

	for {
		var task Task
		if err := dec.Decode(&task); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		result := processTask(chain, store, task)
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
}

func processTask(chain *extract.Chain, store *sidecar.Store, task Task) TaskResult {
	res := chain.Extract(context.Background(), task.Path)
	if res.Status != extract.StatusSuccess {
		return TaskResult{Status: string(res.Status), Method: res.Method, Error: res.Error}
	}

	text := res.Text
	if task.MaxChars > 0 {
		text = sidecar.Truncate(text, task.MaxChars)
	}
	if err := store.Write(task.Digest, text); err != nil {
		return TaskResult{Status: string(extract.StatusFailed), Method: res.Method, Error: err.Error()}
	}

	return TaskResult{Status: string(extract.StatusSuccess), Method: res.Method, SidecarPath: store.Path(task.Digest)}
}
