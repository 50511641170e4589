package vmerr

// Problem is the "problem+json" payload returned to RPC/SDK callers,
// per spec §6. The `Type` field is a stable URN so external tooling can
// switch on it without parsing Title.
type Problem struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Detail        string         `json:"detail"`
	Deterministic bool           `json:"deterministic"`
	Context       map[string]any `json:"context,omitempty"`
}

// ToProblem converts a *vmerr.Error into its wire representation.
func (e *Error) ToProblem() Problem {
	return Problem{
		Type:          "animica://vm/" + e.Code.String(),
		Title:         e.Code.String(),
		Detail:        e.Detail,
		Deterministic: e.Deterministic(),
		Context:       e.Context,
	}
}

// FromProblem reconstructs an *Error from a decoded Problem, matching Title
// back to its Code. Unknown titles decode to VMRevert so callers always get
// a typed error rather than having to special-case decode failures.
func FromProblem(p Problem) *Error {
	for code, name := range codeNames {
		if name == p.Title {
			return &Error{Code: code, Detail: p.Detail, Context: p.Context}
		}
	}
	return &Error{Code: VMRevert, Detail: p.Detail, Context: p.Context}
}
