package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gizmo/internal/compiler"
	"github.com/roach88/gizmo/internal/ir"
)

// LoadMode controls how errors are handled during inventory loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the inventory compiled from a directory of CUE files.
type LoadResult struct {
	Widgets   []ir.Widget
	Gadgets   []ir.Gadget
	FileCount int
}

// LoadError represents an error that occurred during inventory loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadInventory loads widget and gadget declarations from the CUE package in
// dir:
//
//	widget: rocket: parts: ["spoke", "wheel"]
//	gadget: tailx: {widgets: ["rocket"], functions: ["sig"]}
//
// A nil result means the directory could not be loaded at all. Otherwise the
// result holds every record that compiled, and errs lists the rest (only the
// first one in LoadModeFailFast).
func LoadInventory(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("inventory directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing inventory directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}
	var errs []error

	// collect compiles every field under section and reports whether loading
	// should continue.
	collect := func(section string, compile func(cue.Value) error) bool {
		sv := value.LookupPath(cue.ParsePath(section))
		if !sv.Exists() {
			return true
		}
		iter, err := sv.Fields()
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s must be a struct: %v", section, err), Pos: sv.Pos()})
			return mode == LoadModeCollectAll
		}
		for iter.Next() {
			if err := compile(iter.Value()); err != nil {
				errs = append(errs, convertCompileError(err, section+"."+iter.Selector().Unquoted()))
				if mode == LoadModeFailFast {
					return false
				}
			}
		}
		return true
	}

	ok := collect("widget", func(v cue.Value) error {
		w, err := compiler.CompileWidget(v)
		if err != nil {
			return err
		}
		result.Widgets = append(result.Widgets, *w)
		return nil
	})
	if !ok {
		return result, errs
	}
	collect("gadget", func(v cue.Value) error {
		g, err := compiler.CompileGadget(v)
		if err != nil {
			return err
		}
		result.Gadgets = append(result.Gadgets, *g)
		return nil
	})

	if len(result.Widgets) == 0 && len(result.Gadgets) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeEmpty, Message: "no widgets or gadgets declared"})
	}

	return result, errs
}

// FindCUEFiles returns the .cue files directly inside dir, the same set
// load.Instances reads for ".".
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError, keeping the
// CUE position and prefixing the record path.
func convertCompileError(err error, path string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s.%s: %s", path, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}

// Error code constants shared by every CLI command.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeEmpty       = "E007" // No records declared

	// Record shape errors
	ErrCodeInvalidCUE     = "E100" // CUE evaluation error inside a record
	ErrCodeWidgetParts    = "E101" // parts missing or malformed
	ErrCodeGadgetWidgets  = "E111" // widgets missing or malformed
	ErrCodeGadgetFunction = "E112" // functions missing or malformed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
// Indexed fields such as "parts[2]" map like their list.
func MapFieldToErrorCode(field string) string {
	base, _, _ := strings.Cut(field, "[")
	switch base {
	case "cue":
		return ErrCodeInvalidCUE
	case "parts":
		return ErrCodeWidgetParts
	case "widgets":
		return ErrCodeGadgetWidgets
	case "functions":
		return ErrCodeGadgetFunction
	default:
		return ErrCodeGeneric
	}
}
