package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"faultline/internal/progress"
	"faultline/internal/trace"
)

var (
	traceCleanup func()
	traceOnce    sync.Once
	activeTracer trace.Tracer = trace.Nop
	// runTally counts the files of the current command for heartbeats.
	runTally = new(progress.Tally)
)

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	var (
		tf  traceFlags
		err error
	)
	flags := cmd.Root().PersistentFlags()
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if tf.level, err = flags.GetString("trace-level"); err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if tf.mode, err = flags.GetString("trace-mode"); err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	return tf, nil
}

// setupTracing installs the tracer selected by the --trace* flags into the
// command context and returns its cleanup.
func setupTracing(cmd *cobra.Command) (func(), error) {
	runTally = new(progress.Tally)
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		activeTracer = trace.Nop
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return nil, err
	}
	if mode != trace.ModeRing && tf.output == "" {
		tf.output = "-"
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat, runTally.String)
	stderr := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

// flushTracing runs the tracer cleanup once. PersistentPostRun is skipped when
// a command fails, so main calls it as well.
func flushTracing() {
	traceOnce.Do(func() {
		if traceCleanup != nil {
			traceCleanup()
		}
	})
}

// dumpTraceRing writes the ring buffer to stderr: the events below root, or
// everything when root is 0.
func dumpTraceRing(reason string, root uint64) {
	ring := trace.RingOf(activeTracer)
	if ring == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "== trace ring (%s) ==\n", reason)
	var err error
	if root != 0 {
		err = ring.WriteSubtree(os.Stderr, root, trace.FormatText)
	} else {
		err = ring.Dump(os.Stderr, trace.FormatText)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}

// dumpTraceOnPanic dumps the whole ring before letting a panic continue.
func dumpTraceOnPanic() {
	if r := recover(); r != nil {
		dumpTraceRing("panic", 0)
		flushTracing()
		panic(r)
	}
}
