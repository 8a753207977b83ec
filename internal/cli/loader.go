package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/compiler"
)

// LoadResult contains the circuits loaded from a path.
type LoadResult struct {
	Circuits  []*circuit.Circuit
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred while loading circuits.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCircuits compiles every circuit declared under path. A directory is
// loaded as one CUE package; a single file is compiled on its own.
//
// A nil result means nothing could be compiled. Otherwise the result holds
// the good circuits and errs one entry per bad circuit.
func LoadCircuits(path string) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}}
	}
	if !info.IsDir() {
		circuits, err := compiler.LoadFile(path)
		if err != nil {
			return nil, []error{convertCompileError(err)}
		}
		return &LoadResult{Circuits: circuits, FileCount: 1}, nil
	}

	cueFiles, err := FindCUEFiles(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	circuits, compileErrs := compiler.CompileCircuits(value)
	result := &LoadResult{Circuits: circuits, FileCount: len(cueFiles)}

	var errs []error
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err))
	}
	if len(circuits) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoCircuits, Message: "no circuits declared"})
	}
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: err.Error(),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeInvalidCircuit, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoCircuits  = "E008" // Nothing under "circuit"

	// Circuit errors
	ErrCodeCUESyntax      = "E101" // CUE evaluation error
	ErrCodeMissingField   = "E102" // qubits or ops missing
	ErrCodeInvalidOp      = "E103" // malformed instruction
	ErrCodeInvalidCircuit = "E104" // register bounds, measure shape
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeCUESyntax
	case field == "qubits" || field == "ops":
		return ErrCodeMissingField
	case strings.HasPrefix(field, "ops["):
		return ErrCodeInvalidOp
	default:
		return ErrCodeInvalidCircuit
	}
}
