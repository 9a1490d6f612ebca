package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// ErrExpectation is returned when a step's assertions do not hold.
var ErrExpectation = errors.New("scenario: expectation failed")

// StepResult records what one step did.
type StepResult struct {
	Index  int              `json:"index"` // 1-based
	Op     Op               `json:"op"`
	Label  string           `json:"label,omitempty"`
	Size   uint64           `json:"size,omitempty"`   // requested bytes
	Offset int              `json:"offset"`           // header offset, -1 when no block
	Block  uint64           `json:"block,omitempty"`  // payload bytes of the block
	Grew   bool             `json:"grew,omitempty"`
	Mode   alloc.SearchMode `json:"mode"`
	Error  string           `json:"error,omitempty"`
	Chain  string           `json:"chain"`
}

// Report is the outcome of a run.
type Report struct {
	Name  string           `json:"name"`
	Mode  alloc.SearchMode `json:"mode"`
	Steps []StepResult     `json:"steps"`
	Stats alloc.Stats      `json:"stats"`
	Usage alloc.Usage      `json:"usage"`
}

// Runner executes scenarios against an allocator.
type Runner struct {
	Alloc *alloc.Allocator

	// Log receives one record per step. Nil discards.
	Log *slog.Logger

	// OnStep, if set, is called after each step's assertions pass.
	OnStep func(StepResult)
}

type label struct {
	h   alloc.Handle
	off int
}

// Run re-initializes the allocator with the scenario's mode (or the
// allocator's current mode when the scenario names none) and executes every
// step. It stops at the first failed assertion or unexpected error and
// returns the partial report alongside it.
func (r *Runner) Run(s *Scenario) (*Report, error) {
	log := r.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := r.Alloc

	mode := a.Mode()
	if s.Mode != nil {
		mode = *s.Mode
	}
	if err := a.Init(mode); err != nil {
		return nil, err
	}

	rep := &Report{Name: s.Name, Mode: mode}
	labels := make(map[string]label)

	finish := func() {
		rep.Stats = a.Stats()
		rep.Usage = a.Usage()
	}

	for i, st := range s.Steps {
		res := StepResult{Index: i + 1, Op: st.Op, Offset: -1}
		grows := a.Stats().GrowCalls

		var err error
		switch st.Op {
		case OpAlloc:
			res.Size = st.Size
			res.Label = st.As
			var h alloc.Handle
			var buf []byte
			h, buf, err = a.Alloc(st.Size)
			if err == nil {
				copy(buf, st.Fill)
				info, _ := a.Info(h)
				res.Offset, res.Block = info.Offset, info.Size
				if st.As != "" {
					labels[st.As] = label{h: h, off: info.Offset}
				}
			}
		case OpFree:
			res.Label = st.Ref
			l := labels[st.Ref]
			res.Offset = l.off
			err = a.Free(l.h)
		case OpInit:
			err = a.Init(*st.Mode)
		case OpCheck:
			res.Label = st.Ref
			if l, ok := labels[st.Ref]; ok {
				res.Offset = l.off
			}
		}

		res.Grew = a.Stats().GrowCalls > grows
		res.Mode = a.Mode()
		res.Error = ErrorName(err)
		res.Chain = a.String()
		rep.Steps = append(rep.Steps, res)

		log.Debug("step", "index", res.Index, "op", st.Op, "label", res.Label,
			"offset", res.Offset, "error", res.Error, "chain", res.Chain)

		if ferr := check(a, st, res, err, labels); ferr != nil {
			finish()
			return rep, fmt.Errorf("%w: step %d (%s): %w", ErrExpectation, res.Index, st.Op, ferr)
		}
		if r.OnStep != nil {
			r.OnStep(res)
		}
	}

	finish()
	return rep, nil
}

func check(a *alloc.Allocator, st Step, res StepResult, err error, labels map[string]label) error {
	exp := st.Expect

	switch {
	case exp.Error == "" && err != nil:
		return fmt.Errorf("unexpected error: %w", err)
	case exp.Error != "" && err == nil:
		return fmt.Errorf("expected %s, got success", exp.Error)
	case exp.Error != "" && res.Error != exp.Error:
		return fmt.Errorf("expected %s, got %w", exp.Error, err)
	}

	if exp.Offset != nil && res.Offset != *exp.Offset {
		return fmt.Errorf("offset %d, want %d", res.Offset, *exp.Offset)
	}
	if exp.Size != nil && res.Block != *exp.Size {
		return fmt.Errorf("block size %d, want %d", res.Block, *exp.Size)
	}
	if exp.Reuses != "" {
		l, ok := labels[exp.Reuses]
		if !ok {
			return fmt.Errorf("label %q was never bound: its alloc failed", exp.Reuses)
		}
		if res.Offset != l.off {
			return fmt.Errorf("offset %d, want %d (block of %q)", res.Offset, l.off, exp.Reuses)
		}
	}
	if exp.Grew != nil && res.Grew != *exp.Grew {
		return fmt.Errorf("grew=%v, want %v", res.Grew, *exp.Grew)
	}
	if exp.Chain != "" && normalizeChain(res.Chain) != normalizeChain(exp.Chain) {
		return fmt.Errorf("chain %s, want %s", res.Chain, exp.Chain)
	}
	if exp.Cursor != nil {
		cur, ok := a.Cursor()
		if !ok {
			return fmt.Errorf("no cursor, want %d", *exp.Cursor)
		}
		if cur.Offset != *exp.Cursor {
			return fmt.Errorf("cursor at %d, want %d", cur.Offset, *exp.Cursor)
		}
	}
	if exp.Contents != "" {
		l, ok := labels[st.Ref]
		if !ok {
			return fmt.Errorf("label %q was never bound: its alloc failed", st.Ref)
		}
		buf, perr := a.Payload(l.h)
		if perr != nil {
			return fmt.Errorf("contents of %q: %w", st.Ref, perr)
		}
		if !strings.HasPrefix(string(buf), exp.Contents) {
			return fmt.Errorf("contents of %q do not start with %q", st.Ref, exp.Contents)
		}
	}
	if verr := a.Verify(); verr != nil {
		return verr
	}
	return nil
}

// normalizeChain drops whitespace so hand-written chains compare equal to
// the allocator's rendering.
func normalizeChain(s string) string {
	return strings.Join(strings.Fields(s), "")
}
