package typechecker

import (
	"errors"

	"github.com/pint-lang/pint/types"
)

// ErrStackUnderflow is the panic value for popping or peeking an empty
// scope stack. It is a bug in the checker, never a user error.
var ErrStackUnderflow = errors.New("stack underflow")

var (
	ErrNoJumpTarget = errors.New("no enclosing loop or block")
	ErrLabeledOnly  = errors.New("innermost target only accepts labeled jumps")
)

type JumpTarget int

const (
	// LabeledOnly is a labeled block: it can only be reached by name.
	LabeledOnly JumpTarget = iota
	// AnonOnly is an unlabeled loop.
	AnonOnly
	// LabeledOrAnon is a labeled loop.
	LabeledOrAnon
)

// JumpScope is a place break and continue can go to. Type accumulates the
// types of the values that leave through it.
type JumpScope struct {
	Target JumpTarget
	Label  string
	Type   types.Type
}

func (js *JumpScope) AcceptsAnon() bool { return js.Target != LabeledOnly }

func (js *JumpScope) AcceptsLabel(label string) bool {
	return js.Target != AnonOnly && js.Label == label
}

// UnifyType folds t into the accumulated type and returns the result.
func (js *JumpScope) UnifyType(t types.Type, log types.Logger) types.Type {
	js.Type = types.Unify(js.Type, t, log)
	return js.Type
}

type JumpScopeStack struct {
	scopes []*JumpScope
}

func (s *JumpScopeStack) PushLabeledOnly(label string, t types.Type) {
	s.scopes = append(s.scopes, &JumpScope{Target: LabeledOnly, Label: label, Type: t})
}

func (s *JumpScopeStack) PushAnonOnly(t types.Type) {
	s.scopes = append(s.scopes, &JumpScope{Target: AnonOnly, Type: t})
}

func (s *JumpScopeStack) PushLabeledOrAnon(label string, t types.Type) {
	s.scopes = append(s.scopes, &JumpScope{Target: LabeledOrAnon, Label: label, Type: t})
}

// PushLoop pushes the scope of a loop with an optional label.
func (s *JumpScopeStack) PushLoop(label string, t types.Type) {
	if label == "" {
		s.PushAnonOnly(t)
		return
	}
	s.PushLabeledOrAnon(label, t)
}

func (s *JumpScopeStack) Pop() *JumpScope {
	top := s.Peek()
	s.scopes = s.scopes[:len(s.scopes)-1]
	return top
}

func (s *JumpScopeStack) Peek() *JumpScope {
	if len(s.scopes) == 0 {
		panic(ErrStackUnderflow)
	}
	return s.scopes[len(s.scopes)-1]
}

func (s *JumpScopeStack) Len() int { return len(s.scopes) }

// FindLabeled searches every frame, innermost first, for label.
func (s *JumpScopeStack) FindLabeled(label string) *JumpScope {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i].AcceptsLabel(label) {
			return s.scopes[i]
		}
	}
	return nil
}

// PeekAnon returns the target of an unlabeled jump. Only the innermost frame
// is considered.
func (s *JumpScopeStack) PeekAnon() (*JumpScope, error) {
	if len(s.scopes) == 0 {
		return nil, ErrNoJumpTarget
	}
	top := s.scopes[len(s.scopes)-1]
	if !top.AcceptsAnon() {
		return nil, ErrLabeledOnly
	}
	return top, nil
}
