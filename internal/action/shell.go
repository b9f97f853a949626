// Package action launches hotspot commands.
package action

import (
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultShell interprets action commands when Shell.Path is empty.
const DefaultShell = "sh"

// Shell runs each command with `<Path> -c <command>` and never waits for it.
// The child inherits the environment and stderr; stdin and stdout are
// attached to /dev/null.
type Shell struct {
	Path   string      // interpreter, DefaultShell if empty
	Stderr io.Writer   // child stderr, os.Stderr if nil
	Logger *log.Logger // launch and exit lines; nil disables logging

	wg sync.WaitGroup
}

// Invoke starts command in the background. Launch failures are logged and
// otherwise dropped.
func (s *Shell) Invoke(command string) {
	id := uuid.NewString()[:8]
	shell := s.Path
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		s.logf("action %s: launch %q: %v", id, command, err)
		return
	}
	s.logf("action %s: started %q (pid %d)", id, command, cmd.Process.Pid)

	start := time.Now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := cmd.Wait()
		s.logf("action %s: exited after %s (%v)", id, time.Since(start).Round(time.Millisecond), exitStatus(err))
	}()
}

// Wait blocks until every launched command has exited. The poll loop never
// calls it; it exists for tests and orderly shutdown.
func (s *Shell) Wait() {
	s.wg.Wait()
}

func (s *Shell) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func exitStatus(err error) string {
	if err == nil {
		return "status 0"
	}
	return err.Error()
}
