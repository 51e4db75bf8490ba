// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package cerr defines the compiler's user-facing error kinds. Every kind
// except ParseError carries a SrcTag and translates to "row:col: message"
// against the original source text.
package cerr

import (
	"fmt"

	"hasselc/srctag"
)

// DuplicateSymbol is returned when a symbol table insert collides with an
// existing name or ref.
type DuplicateSymbol struct {
	Tag  srctag.Tag
	Name string
}

func (e *DuplicateSymbol) Error() string {
	return fmt.Sprintf("duplicate symbol '%s'", e.Name)
}

// SymbolNotFound is returned when a name fails lookup in the visible scope
// chain.
type SymbolNotFound struct {
	Tag  srctag.Tag
	Name string
}

func (e *SymbolNotFound) Error() string {
	return fmt.Sprintf("symbol not found: '%s'", e.Name)
}

// OrgOutOfRange is returned when an `org` directive names an address
// outside [0x200, 0xFFFF].
type OrgOutOfRange struct {
	Tag srctag.Tag
}

func (e *OrgOutOfRange) Error() string {
	return "org address out of range (expected 0x0200-0xFFFF)"
}

// OutOfBounds is returned when a numeric literal cannot fit in its
// declared or required type.
type OutOfBounds struct {
	Tag      srctag.Tag
	Value    int32
	Min, Max int32
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("value %d out of bounds [%d, %d]", e.Value, e.Min, e.Max)
}

// TypeError is returned when an expression's resolved type doesn't match
// what its context requires.
type TypeError struct {
	Tag              srctag.Tag
	Expected, Actual string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", e.Expected, e.Actual)
}

// MustReturnAValue is returned when `return;` appears in a non-void
// function.
type MustReturnAValue struct {
	Tag srctag.Tag
}

func (e *MustReturnAValue) Error() string {
	return "function must return a value"
}

// InvalidLeftValue is returned when an assignment's left-hand side is not a
// storable location.
type InvalidLeftValue struct {
	Tag srctag.Tag
}

func (e *InvalidLeftValue) Error() string {
	return "invalid left-hand side of assignment"
}

// ExpectedNArgumentsGotM is returned on a function call arity mismatch.
type ExpectedNArgumentsGotM struct {
	Tag              srctag.Tag
	Name             string
	Expected, Actual int
}

func (e *ExpectedNArgumentsGotM) Error() string {
	return fmt.Sprintf("'%s' expects %d argument(s), got %d", e.Name, e.Expected, e.Actual)
}

// ConstCantBeVoid is returned when a constant declaration names a void
// type.
type ConstCantBeVoid struct {
	Tag srctag.Tag
}

func (e *ConstCantBeVoid) Error() string {
	return "constant cannot have type void"
}

// ConstEvaluationFailed is returned when constant folding cannot reduce an
// initializer to a value (an undefined subexpression, or checked overflow).
type ConstEvaluationFailed struct {
	Tag    srctag.Tag
	Reason string
}

func (e *ConstEvaluationFailed) Error() string {
	if e.Reason == "" {
		return "constant evaluation failed"
	}
	return fmt.Sprintf("constant evaluation failed: %s", e.Reason)
}

// Unsupported is returned for a structurally recognized but unimplemented
// construct (for example, a Break outside of any enclosing loop), per the
// source material's direction to fail loudly rather than silently drop
// unsupported control flow.
type Unsupported struct {
	Tag    srctag.Tag
	Detail string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Detail)
}

// ParseError carries one or more recovered parser diagnostics. Unlike every
// other kind it has no single SrcTag since it may aggregate several.
type ParseError struct {
	Messages []string
}

func (e *ParseError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	s := fmt.Sprintf("%d parse errors:", len(e.Messages))
	for _, m := range e.Messages {
		s += "\n  " + m
	}
	return s
}

// Tagged is implemented by every kind except ParseError.
type Tagged interface {
	error
	SrcTag() srctag.Tag
}

func (e *DuplicateSymbol) SrcTag() srctag.Tag         { return e.Tag }
func (e *SymbolNotFound) SrcTag() srctag.Tag          { return e.Tag }
func (e *OrgOutOfRange) SrcTag() srctag.Tag           { return e.Tag }
func (e *OutOfBounds) SrcTag() srctag.Tag             { return e.Tag }
func (e *TypeError) SrcTag() srctag.Tag               { return e.Tag }
func (e *MustReturnAValue) SrcTag() srctag.Tag        { return e.Tag }
func (e *InvalidLeftValue) SrcTag() srctag.Tag        { return e.Tag }
func (e *ExpectedNArgumentsGotM) SrcTag() srctag.Tag  { return e.Tag }
func (e *ConstCantBeVoid) SrcTag() srctag.Tag         { return e.Tag }
func (e *ConstEvaluationFailed) SrcTag() srctag.Tag   { return e.Tag }
func (e *Unsupported) SrcTag() srctag.Tag             { return e.Tag }

// Translate renders any error into a user-facing "row:col: message" string,
// using source to derive the row/column from the error's SrcTag. ParseError
// and plain errors are passed through as-is.
func Translate(source string, err error) string {
	if err == nil {
		return ""
	}
	if tagged, ok := err.(Tagged); ok {
		tag := tagged.SrcTag()
		return fmt.Sprintf("%s: %s", tag.String(source), tagged.Error())
	}
	return err.Error()
}
