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

// Package types implements the Hassel type system: BaseType and its
// assign/cast/compare/choose relations, NativeType, and TypedValue.
package types

import (
	"fmt"

	"hasselc/utils"
)

// SymbolRef is an opaque handle into a symbol table, allocated by a
// process-wide monotonic generator. It lives in this package (the lowest
// point in the dependency graph: types ← symtab ← typedir ← llir ← code) so
// that TypedValue.ArrayU8 can reference a symbol without symtab importing
// types and types importing symtab back.
type SymbolRef int

const NoSymbol SymbolRef = -1

// Kind discriminates BaseType's variants.
type Kind int

const (
	Bool Kind = iota
	U8
	U16
	Pointer
	Void
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case Pointer:
		return "pointer"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// BaseType is a Hassel type: Bool, U8, U16, Pointer(T), or Void. Pointer is
// the only variant that carries a payload (its pointee type).
type BaseType struct {
	kind    Kind
	pointee *BaseType
}

var (
	TBool = BaseType{kind: Bool}
	TU8   = BaseType{kind: U8}
	TU16  = BaseType{kind: U16}
	TVoid = BaseType{kind: Void}
)

func TPointer(to BaseType) BaseType {
	return BaseType{kind: Pointer, pointee: &to}
}

func (t BaseType) Kind() Kind { return t.kind }

// Pointee panics if t is not a Pointer; callers must check Kind() first.
func (t BaseType) Pointee() BaseType {
	if t.kind != Pointer {
		panic("types: Pointee called on non-pointer type " + t.kind.String())
	}
	return *t.pointee
}

func (t BaseType) String() string {
	if t.kind == Pointer {
		return "&" + t.Pointee().String()
	}
	return t.kind.String()
}

func (t BaseType) Equal(other BaseType) bool {
	if t.kind != other.kind {
		return false
	}
	if t.kind == Pointer {
		return t.Pointee().Equal(other.Pointee())
	}
	return true
}

// Size returns the type's width in bytes, or -1 for Void (a "None" size in
// the source material, represented here as a sentinel since Go lacks Option
// without allocation noise for such a hot path).
func (t BaseType) Size() int {
	switch t.kind {
	case Bool, U8:
		return 1
	case U16, Pointer:
		return 2
	case Void:
		return -1
	default:
		utils.Unimplement()
		return 0
	}
}

// CanAssignInto reports whether a value of type src may be assigned into a
// location of type dst: identity; Pointer->U16; U16->Pointer; U8->{U16,Pointer};
// Bool->{U8,U16}; Void assigns into nothing.
func (src BaseType) CanAssignInto(dst BaseType) bool {
	if src.Equal(dst) {
		return true
	}
	switch src.kind {
	case Pointer:
		return dst.kind == U16
	case U16:
		return dst.kind == Pointer
	case U8:
		return dst.kind == U16 || dst.kind == Pointer
	case Bool:
		return dst.kind == U8 || dst.kind == U16
	case Void:
		return false
	default:
		return false
	}
}

// CanCastInto reports whether an explicit cast from src to dst is legal:
// assignment plus any pair among {U8,U16,Pointer,Bool} in both directions.
// Void casts are always forbidden.
func (src BaseType) CanCastInto(dst BaseType) bool {
	if src.kind == Void || dst.kind == Void {
		return false
	}
	if src.CanAssignInto(dst) {
		return true
	}
	castable := func(k Kind) bool {
		return k == U8 || k == U16 || k == Pointer || k == Bool
	}
	return castable(src.kind) && castable(dst.kind)
}

// CanCompare reports whether two values of these types may be compared:
// identity, plus Pointer<->U16. U8 and Bool are only self-comparable; Void
// is never comparable.
func (a BaseType) CanCompare(b BaseType) bool {
	if a.kind == Void || b.kind == Void {
		return false
	}
	if a.Equal(b) {
		return true
	}
	return (a.kind == Pointer && b.kind == U16) || (a.kind == U16 && b.kind == Pointer)
}

// ChooseType implements the choose_type coercion rule used to pick a common
// result type for two operand types: equal types pick either; otherwise if
// one assigns into the other, the larger wins; on equal size, L wins unless
// L is Bool; Void is treated as the larger of any pair.
func ChooseType(l, r BaseType) (BaseType, error) {
	if l.Equal(r) {
		return l, nil
	}
	if l.kind == Void {
		return l, nil
	}
	if r.kind == Void {
		return r, nil
	}
	if l.CanAssignInto(r) || r.CanAssignInto(l) {
		ls, rs := l.Size(), r.Size()
		switch {
		case ls > rs:
			return l, nil
		case rs > ls:
			return r, nil
		default:
			if l.kind == Bool {
				return r, nil
			}
			return l, nil
		}
	}
	return BaseType{}, fmt.Errorf("types: cannot choose common type for %s and %s", l, r)
}

// NativeType is the machine representation width: U8 or U16. Bool and
// Pointer both resolve to one of these when something needs to know how
// many bytes a value actually occupies on the wire.
type NativeType int

const (
	NativeU8 NativeType = iota
	NativeU16
)

func (t BaseType) Native() NativeType {
	if t.Size() <= 1 {
		return NativeU8
	}
	return NativeU16
}
