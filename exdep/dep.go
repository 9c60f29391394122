// Package exdep checks that external programs are installed.
package exdep

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotFound is wrapped by errors about programs missing from PATH.
var ErrNotFound = errors.New("program not found")

// Dep represents an external tool dependency
type Dep struct {
	Name  string
	Links []string
	Docs  string
}

// FromCommand returns the program of a command line template, the first
// whitespace separated word, as a dependency.
func FromCommand(template, docs string) Dep {
	var name string
	if fields := strings.Fields(template); len(fields) > 0 {
		name = fields[0]
	}
	return Dep{Name: name, Docs: docs}
}

// Check returns one error for each dependency not found on PATH.
func Check(deps []Dep) []error {
	var errs []error
	for _, dep := range deps {
		if err := check(dep); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func check(dep Dep) error {
	if dep.Name == "" {
		return fmt.Errorf("%w: empty command [%s]", ErrNotFound, dep.Docs)
	}
	if _, err := exec.LookPath(dep.Name); err != nil {
		msg := fmt.Sprintf("%s: %v", dep.Name, err)
		if hints := dep.hints(); hints != "" {
			msg += " [" + hints + "]"
		}
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return nil
}

func (dep Dep) hints() string {
	var parts []string
	if dep.Docs != "" {
		parts = append(parts, dep.Docs)
	}
	return strings.Join(append(parts, dep.Links...), ", ")
}
