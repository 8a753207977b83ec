package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ValidationError is one invalid circuit or load failure.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Circuits []string          `json:"circuits"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate CUE circuit definitions",
		Long: `Validate the circuits declared in a CUE file or directory without
recording anything. Every invalid circuit is reported, not just the first.

Exit codes:
  0 - All circuits valid
  1 - One or more circuits invalid
  2 - Command error (path not found, no CUE files)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	loaded, loadErrs := LoadCircuits(path)
	if loaded == nil {
		le := asLoadError(loadErrs[0])
		if err := f.Error(le.Code, le.Message, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, le.Message)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	result := ValidationResult{Valid: len(loadErrs) == 0, Circuits: []string{}}
	for _, c := range loaded.Circuits {
		result.Circuits = append(result.Circuits, c.Name)
	}
	for _, err := range loadErrs {
		le := asLoadError(err)
		ve := ValidationError{Code: le.Code, Message: le.Message}
		if le.Pos.IsValid() {
			ve.File = le.Pos.Filename()
			ve.Line = le.Pos.Line()
		}
		result.Errors = append(result.Errors, ve)
	}

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: fmt.Sprintf("%d invalid circuit(s)", len(result.Errors))}
		}
		if err := writeJSON(f.Writer, resp); err != nil {
			return err
		}
	} else {
		writeValidation(f.Writer, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid circuit(s)", len(result.Errors)))
	}
	return nil
}

func writeValidation(w io.Writer, result ValidationResult) {
	for _, name := range result.Circuits {
		fmt.Fprintf(w, "✓ %s\n", name)
	}
	for _, e := range result.Errors {
		if e.File != "" {
			fmt.Fprintf(w, "✗ %s:%d: [%s] %s\n", e.File, e.Line, e.Code, e.Message)
		} else {
			fmt.Fprintf(w, "✗ [%s] %s\n", e.Code, e.Message)
		}
	}
	if result.Valid {
		fmt.Fprintln(w, "✓ All circuits valid")
		return
	}
	fmt.Fprintf(w, "✗ %d invalid circuit(s)\n", len(result.Errors))
}

func asLoadError(err error) *LoadError {
	if le, ok := err.(*LoadError); ok {
		return le
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
