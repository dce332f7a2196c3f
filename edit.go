package quill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/jahvon/expression"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Editor opens a file for interactive editing and blocks until the editor
// process exits.
type Editor interface {
	OpenFileForEdit(path string) error
}

// ShellEditor runs an editor command line through a shell interpreter
// attached to the caller's terminal. The command may be a template rendered
// with the file path ("code --wait {{ filepath }}"); otherwise the path is
// appended as the final argument.
type ShellEditor struct {
	Command string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewShellEditor(command string) *ShellEditor {
	return &ShellEditor{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (e *ShellEditor) OpenFileForEdit(path string) error {
	if e.Command == "" {
		return fmt.Errorf("%w: no editor command configured", ErrExecutableNotFound)
	}

	cmd, err := e.renderCommand(path)
	if err != nil {
		return err
	}

	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return fmt.Errorf("%w: no editor command configured", ErrExecutableNotFound)
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return fmt.Errorf("%w: %s", ErrExecutableNotFound, fields[0])
	}

	return e.run(cmd)
}

func (e *ShellEditor) renderCommand(path string) (string, error) {
	if !strings.Contains(e.Command, "{{") {
		return e.Command + " " + shellescape.Quote(path), nil
	}

	data := map[string]interface{}{
		"filepath": path,
		"file":     path,
	}
	tmpl := expression.NewTemplate("editor-command-template", data)
	if err := tmpl.Parse(e.Command); err != nil {
		return "", fmt.Errorf("parsing editor command template: %w", err)
	}
	result, err := tmpl.ExecuteToString()
	if err != nil {
		return "", fmt.Errorf("evaluating editor command template: %w", err)
	}
	return result, nil
}

func (e *ShellEditor) run(cmd string) error {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(strings.TrimSpace(cmd)), "")
	if err != nil {
		return fmt.Errorf("unable to parse editor command - %w", err)
	}

	stdErrBuffer := &strings.Builder{}
	stderr := e.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(e.Stdin, e.Stdout, io.MultiWriter(stderr, stdErrBuffer)),
	)
	if err != nil {
		return fmt.Errorf("unable to create runner - %w", err)
	}

	if err := runner.Run(context.Background(), prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitCodeError{
				Code:   int(exitStatus),
				Stderr: strings.TrimSpace(stdErrBuffer.String()),
			}
		}
		return fmt.Errorf("encountered an error executing editor - %w", err)
	}

	return nil
}

// EditSecret runs the decrypt, edit, re-encrypt workflow for one secret:
// fetch it, materialize the plaintext to a scoped temporary file, block on
// the editor, read the file back, and store the result with the original
// configuration. The temporary file is removed on every exit path. A no-op
// edit still re-encrypts and rewrites the secret.
func EditSecret(store *Store, environment, name string, editor Editor) error {
	secret, err := store.Fetch(environment, name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "quill-edit-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(secret.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := editor.OpenFileForEdit(tmpPath); err != nil {
		return err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to read edited file: %w", err)
	}

	return store.Put(environment, name, edited)
}
