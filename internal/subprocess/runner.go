// Package subprocess runs the external tools a migration shells out to.
package subprocess

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/conn-castle/capmigrate/internal/logger"
	"github.com/conn-castle/capmigrate/internal/messages"
)

// Runner runs a command to completion in dir.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

var execCommandContext = exec.CommandContext

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Output receives the combined command output as it is produced. The
	// output is also captured and attached to the error on failure.
	Output io.Writer
}

// Run executes name with args in dir and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := execCommandContext(ctx, name, args...)
	cmd.Dir = dir
	var captured bytes.Buffer
	var out io.Writer = &captured
	if r.Output != nil {
		out = io.MultiWriter(&captured, r.Output)
	}
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		joined := strings.Join(args, " ")
		if output := strings.TrimSpace(captured.String()); output != "" {
			return fmt.Errorf(messages.CommandFailedOutputFmt, name, joined, err, output)
		}
		return fmt.Errorf(messages.CommandFailedFmt, name, joined, err)
	}
	return nil
}

// Command is one command a DryRunRunner was asked to run.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String renders the command line.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// DryRunRunner records commands instead of running them.
type DryRunRunner struct {
	Log      *logger.Logger
	Commands []Command
}

// Run records the command and logs what would have run.
func (r *DryRunRunner) Run(_ context.Context, dir string, name string, args ...string) error {
	r.Commands = append(r.Commands, Command{Dir: dir, Name: name, Args: append([]string(nil), args...)})
	r.Log.Infof(messages.CommandDryRunFmt, dir, name, strings.Join(args, " "))
	return nil
}
