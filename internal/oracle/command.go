package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCommand is the external checker used when Command.Argv is empty.
var DefaultCommand = []string{"ruby", "-c"}

// Command runs an external syntax checker with the text on stdin.
// Exit status 0 means valid; a non-zero exit means invalid. Failing to start
// the process or hitting Timeout is an oracle failure.
type Command struct {
	Argv    []string
	Timeout time.Duration
}

// NewCommand returns a checker for argv, or `ruby -c` when argv is empty.
func NewCommand(argv ...string) *Command {
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	return &Command{Argv: argv, Timeout: 10 * time.Second}
}

func (c *Command) name() string {
	return strings.Join(c.argv(), " ")
}

func (c *Command) argv() []string {
	if len(c.Argv) == 0 {
		return DefaultCommand
	}
	return c.Argv
}

// Valid runs the command once.
func (c *Command) Valid(src string) (bool, error) {
	return c.ValidContext(context.Background(), src)
}

func (c *Command) ValidContext(ctx context.Context, src string) (bool, error) {
	rep, err := c.CheckContext(ctx, src)
	return rep.Valid, err
}

// Check runs the command and parses "-:N: message" lines from its stderr.
func (c *Command) Check(src string) (Report, error) {
	return c.CheckContext(context.Background(), src)
}

// CheckContext is Check with the process killed when parent is done.
func (c *Command) CheckContext(parent context.Context, src string) (Report, error) {
	if err := parent.Err(); err != nil {
		return Report{}, &Failure{Oracle: c.name(), Err: err}
	}
	ctx := parent
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	argv := c.argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(src)
	var stderr bytes.Buffer
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Report{Valid: true}, nil
	}
	if err := parent.Err(); err != nil {
		return Report{}, &Failure{Oracle: c.name(), Err: err}
	}
	if ctx.Err() != nil {
		return Report{}, &Failure{Oracle: c.name(), Err: fmt.Errorf("timed out after %s", c.Timeout)}
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Report{}, &Failure{Oracle: c.name(), Err: err}
	}
	return Report{Valid: false, Problems: parseProblems(stderr.String())}, nil
}

var problemLine = regexp.MustCompile(`^(?:-|[^:]+):(\d+):\s*(.*)$`)

// parseProblems extracts "file:line: message" records; other lines are
// appended to the previous message.
func parseProblems(out string) []Problem {
	var problems []Problem
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := problemLine.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			problems = append(problems, Problem{Line: n, Msg: m[2]})
			continue
		}
		if len(problems) == 0 {
			problems = append(problems, Problem{Msg: strings.TrimSpace(line)})
			continue
		}
		// продолжение предыдущего сообщения (указатель ^, контекст)
		if t := strings.TrimSpace(line); t != "^" && !strings.HasPrefix(t, "^~") {
			last := &problems[len(problems)-1]
			last.Msg += "\n" + t
		}
	}
	return problems
}
