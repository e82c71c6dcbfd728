package diagnostics

import "github.com/emmylua-go/semacore/internal/ids"

// Action mirrors syntax.DiagnosticAction without importing package
// syntax, keeping diagnostics a leaf both the analyzers and any outer
// surface can import without a cycle.
type Action string

const (
	ActionDisable         Action = "disable"
	ActionEnable          Action = "enable"
	ActionDisableNextLine Action = "disable-next-line"
)

// directive is one scanned `---@diagnostic action[: codes]` comment.
type directive struct {
	action Action
	codes  []string // empty means "all codes"
	rng    ids.Range
	line   int
}

// Filter accumulates inline disable/enable directives for one file
// and answers whether a given diagnostic at a given line should be
// suppressed.
type Filter struct {
	file       ids.FileId
	directives []directive
}

func NewFilter(file ids.FileId) *Filter {
	return &Filter{file: file}
}

// Record registers one inline directive discovered by the doc analyzer
// at the given source line (1-based).
func (f *Filter) Record(action Action, codes []string, line int, rng ids.Range) {
	f.directives = append(f.directives, directive{action: action, codes: codes, rng: rng, line: line})
}

// Allows reports whether a diagnostic with the given code, reported at
// the given line, should be surfaced. disable-next-line only applies to
// the line immediately following it; a plain disable applies from its
// line onward until a matching enable or end of file. A single
// linear scan with a running on/off set per code.
func (f *Filter) Allows(code DiagnosticCode, line int) bool {
	disabledAll := false
	disabledCodes := map[string]bool{}
	for _, d := range f.directives {
		switch d.action {
		case ActionDisableNextLine:
			if d.line+1 == line && matches(d.codes, code) {
				return false
			}
		case ActionDisable:
			if d.line > line {
				continue
			}
			if len(d.codes) == 0 {
				disabledAll = true
			} else {
				for _, c := range d.codes {
					disabledCodes[c] = true
				}
			}
		case ActionEnable:
			if d.line > line {
				continue
			}
			if len(d.codes) == 0 {
				disabledAll = false
				disabledCodes = map[string]bool{}
			} else {
				for _, c := range d.codes {
					delete(disabledCodes, c)
				}
			}
		}
	}
	if disabledAll {
		return false
	}
	return !disabledCodes[string(code)]
}

func matches(codes []string, code DiagnosticCode) bool {
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if c == string(code) {
			return true
		}
	}
	return false
}

// ApplyAll filters errs in place, dropping any the recorded directives
// suppress. line is derived by the caller from the byte offset (the
// filter itself is line-number-agnostic beyond what Record supplies).
func (f *Filter) ApplyAll(errs []*DiagnosticError, lineOf func(ids.Position) int) []*DiagnosticError {
	out := errs[:0:0]
	for _, e := range errs {
		if f.Allows(e.Code, lineOf(e.Range.Start)) {
			out = append(out, e)
		}
	}
	return out
}
