package compiler

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Event represents a moment in a streaming compiler run.
type Event struct {
	Type       string // "start", "output", or "finish"
	OutputLine string // for "output" events
	Err        error  // for "finish" events
	Output     []byte // full combined output, for "finish" events
	Duration   time.Duration
}

// RunWithEvents invokes the compiler and returns a channel of events:
// one "start", one "output" per line of combined stdout/stderr, and one
// "finish" carrying the outcome. The channel is closed after "finish".
func RunWithEvents(ctx context.Context, bin string, opts Options) <-chan Event {
	o := opts.withDefaults()
	events := make(chan Event, 16)

	go func() {
		defer close(events)

		cmd := exec.CommandContext(ctx, bin, o.Args()...)
		cmd.Dir = o.Dir

		stdoutPipe, _ := cmd.StdoutPipe()
		stderrPipe, _ := cmd.StderrPipe()

		var outputBuf bytes.Buffer
		multiReader := io.MultiReader(stdoutPipe, stderrPipe)
		scanner := bufio.NewScanner(multiReader)

		events <- Event{Type: "start"}
		start := time.Now()

		if err := cmd.Start(); err != nil {
			events <- Event{
				Type:     "finish",
				Err:      fmt.Errorf("failed to start %s: %w", bin, err),
				Duration: time.Since(start),
			}
			return
		}

		var streamWg sync.WaitGroup
		streamWg.Add(1)
		go func() {
			defer streamWg.Done()
			for scanner.Scan() {
				line := scanner.Text()
				outputBuf.WriteString(line + "\n")
				events <- Event{Type: "output", OutputLine: line}
			}
		}()

		streamWg.Wait()
		err := cmd.Wait()
		if err != nil {
			err = fmt.Errorf("tsc exited with an error: %w", err)
		}

		events <- Event{
			Type:     "finish",
			Err:      err,
			Output:   outputBuf.Bytes(),
			Duration: time.Since(start),
		}
	}()

	return events
}
