package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Op names a step kind.
type Op string

const (
	OpAlloc Op = "alloc"
	OpFree  Op = "free"
	OpInit  Op = "init"
	OpCheck Op = "check" // assertions only, no allocator call
)

// ErrInvalid is returned for scenario files that cannot be executed.
var ErrInvalid = errors.New("scenario: invalid")

// Scenario is a scripted sequence of allocator calls.
type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Mode        *alloc.SearchMode `yaml:"mode,omitempty"`

	// Region sizing. Zero keeps whatever the caller configured.
	Reserve int    `yaml:"reserve,omitempty"`
	Limit   uint64 `yaml:"limit,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is one allocator call plus the assertions checked after it.
type Step struct {
	Op   Op                `yaml:"op"`
	Size uint64            `yaml:"size,omitempty"` // alloc
	As   string            `yaml:"as,omitempty"`   // alloc: label for the new block
	Ref  string            `yaml:"ref,omitempty"`  // free, check: label to act on
	Mode *alloc.SearchMode `yaml:"mode,omitempty"` // init
	Fill string            `yaml:"fill,omitempty"` // alloc: bytes copied into the payload

	Expect Expect `yaml:"expect,omitempty"`
}

// Expect lists optional assertions. Unset fields are not checked.
type Expect struct {
	Offset   *int    `yaml:"offset,omitempty"`   // header offset of the block
	Size     *uint64 `yaml:"size,omitempty"`     // payload size of the block
	Reuses   string  `yaml:"reuses,omitempty"`   // block sits where this label's block was
	Grew     *bool   `yaml:"grew,omitempty"`     // whether the region grew
	Error    string  `yaml:"error,omitempty"`    // error name, see ErrorName
	Chain    string  `yaml:"chain,omitempty"`    // chain rendering after the step
	Cursor   *int    `yaml:"cursor,omitempty"`   // header offset of the next-fit cursor
	Contents string  `yaml:"contents,omitempty"` // payload prefix of Ref
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario, rejecting unknown fields.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step is well formed and only refers to labels
// defined by an earlier alloc.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}
	if s.Reserve < 0 {
		return fmt.Errorf("%w: negative reserve %d", ErrInvalid, s.Reserve)
	}

	labels := make(map[string]bool)
	for i, st := range s.Steps {
		fail := func(format string, args ...any) error {
			return fmt.Errorf("%w: step %d (%s): %s", ErrInvalid, i+1, st.Op, fmt.Sprintf(format, args...))
		}
		ref := func(name string) error {
			if name != "" && !labels[name] {
				return fail("unknown label %q", name)
			}
			return nil
		}

		switch st.Op {
		case OpAlloc:
			if st.Ref != "" || st.Mode != nil {
				return fail("alloc takes size, as and fill")
			}
			if uint64(len(st.Fill)) > st.Size {
				return fail("fill of %d bytes exceeds size %d", len(st.Fill), st.Size)
			}
		case OpFree:
			if st.Ref == "" {
				return fail("missing ref")
			}
		case OpInit:
			if st.Mode == nil {
				return fail("missing mode")
			}
		case OpCheck:
			if st.Expect.Contents != "" && st.Ref == "" {
				return fail("contents needs ref")
			}
		default:
			return fail("unknown op")
		}

		if st.Expect.Error != "" {
			if _, ok := errorsByName[st.Expect.Error]; !ok {
				return fail("unknown error %q", st.Expect.Error)
			}
		}
		if err := ref(st.Ref); err != nil {
			return err
		}
		if err := ref(st.Expect.Reuses); err != nil {
			return err
		}
		if st.As != "" {
			labels[st.As] = true
		}
	}
	return nil
}

var errorsByName = map[string]error{
	"out-of-memory":    alloc.ErrOutOfMemory,
	"invalid-argument": alloc.ErrInvalidArgument,
	"double-free":      alloc.ErrDoubleFree,
	"invalid-handle":   alloc.ErrInvalidHandle,
}

// ErrorName returns the scenario name of an allocator error, or "" when err
// is nil or not an allocator error.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}
	for _, name := range []string{"out-of-memory", "invalid-argument", "double-free", "invalid-handle"} {
		if errors.Is(err, errorsByName[name]) {
			return name
		}
	}
	return ""
}
