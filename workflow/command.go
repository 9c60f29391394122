package workflow

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/miku/clam"
	"github.com/sirupsen/logrus"
)

// Collaborator is an external stage, like the Scopus converter or the
// merger. Args map placeholder names to file paths; Run blocks until the
// stage is done.
type Collaborator interface {
	Run(args map[string]string) error
}

// CommandError is returned when an external program fails.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLine(out)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// placeholder matches "{{ name }}" and "{{{ name }}}".
var placeholder = regexp.MustCompile(`\{\{\{?\s*(\w+)\s*\}\}\}?`)

// rawTemplate turns every placeholder into an unescaped one, so values reach
// the shell as given instead of HTML escaped.
func rawTemplate(t string) string {
	return placeholder.ReplaceAllString(t, "{{{${1}}}}")
}

// Command runs a program from a command line template, e.g.
// "python3 scopus_to_wos_converter.py {{ input }} {{ output }}". Values are
// shell quoted when filled in, so placeholders must not be quoted in the
// template. Standard output is logged at debug level, standard error is kept
// for the error.
type Command struct {
	Template string
	Timeout  time.Duration
	Logger   logrus.FieldLogger
}

// Run fills in the template and runs the command.
func (c *Command) Run(args map[string]string) error {
	var (
		stdout, stderr bytes.Buffer
		runner         = clam.Runner{
			Stdout:  &stdout,
			Stderr:  &stderr,
			Timeout: c.Timeout,
		}
		m = clam.Map{}
	)
	for k, v := range args {
		m[k] = shellescape.Quote(v)
	}
	started := time.Now()
	err := runner.Run(rawTemplate(c.Template), m)
	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"command": c.Template,
			"elapsed": time.Since(started).Round(time.Millisecond),
		}).Debugf("command finished: %s", strings.TrimSpace(stdout.String()))
	}
	if err != nil {
		return &CommandError{Command: c.Template, Output: stderr.String(), Err: err}
	}
	return nil
}
