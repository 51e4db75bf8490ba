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

package types

import "fmt"

// ValueKind discriminates TypedValue's variants.
type ValueKind int

const (
	UnresolvedInt ValueKind = iota
	ValU8
	ValU16
	ArrayU8
)

// TypedValue is a constant-folded or literal value somewhere along the
// pipeline. UnresolvedInt only ever appears before the type checker has run;
// ArrayU8 names either a fixed address or a symbol backing an array.
type TypedValue struct {
	kind ValueKind
	i    int32
	u8   uint8
	u16  uint16
	addr uint16
	sym  SymbolRef
}

func NewUnresolvedInt(v int32) TypedValue {
	return TypedValue{kind: UnresolvedInt, i: v}
}

func NewU8(v uint8) TypedValue {
	return TypedValue{kind: ValU8, u8: v}
}

func NewU16(v uint16) TypedValue {
	return TypedValue{kind: ValU16, u16: v}
}

// NewArrayU8Addr builds an ArrayU8 value backed by a fixed address.
func NewArrayU8Addr(addr uint16) TypedValue {
	return TypedValue{kind: ArrayU8, addr: addr, sym: NoSymbol}
}

// NewArrayU8Symbol builds an ArrayU8 value backed by a not-yet-resolved
// symbol reference.
func NewArrayU8Symbol(ref SymbolRef) TypedValue {
	return TypedValue{kind: ArrayU8, sym: ref}
}

func (v TypedValue) Kind() ValueKind { return v.kind }

func (v TypedValue) UnresolvedValue() int32 {
	if v.kind != UnresolvedInt {
		panic("types: UnresolvedValue called on resolved TypedValue")
	}
	return v.i
}

func (v TypedValue) U8Value() uint8 {
	if v.kind != ValU8 {
		panic("types: U8Value called on non-U8 TypedValue")
	}
	return v.u8
}

func (v TypedValue) U16Value() uint16 {
	if v.kind != ValU16 {
		panic("types: U16Value called on non-U16 TypedValue")
	}
	return v.u16
}

func (v TypedValue) ArrayAddr() (uint16, bool) {
	if v.kind != ArrayU8 {
		panic("types: ArrayAddr called on non-ArrayU8 TypedValue")
	}
	return v.addr, v.sym == NoSymbol
}

func (v TypedValue) ArraySymbol() SymbolRef {
	if v.kind != ArrayU8 {
		panic("types: ArraySymbol called on non-ArrayU8 TypedValue")
	}
	return v.sym
}

// Type returns the BaseType this value resolves to. UnresolvedInt has no
// fixed type yet; callers must narrow it via the type checker first.
func (v TypedValue) Type() BaseType {
	switch v.kind {
	case ValU8:
		return TU8
	case ValU16:
		return TU16
	case ArrayU8:
		return TPointer(TU8)
	default:
		panic("types: Type called on UnresolvedInt")
	}
}

func (v TypedValue) String() string {
	switch v.kind {
	case UnresolvedInt:
		return fmt.Sprintf("%d", v.i)
	case ValU8:
		return fmt.Sprintf("%du8", v.u8)
	case ValU16:
		return fmt.Sprintf("%du16", v.u16)
	case ArrayU8:
		if v.sym == NoSymbol {
			return fmt.Sprintf("array@0x%04X", v.addr)
		}
		return fmt.Sprintf("array@sym%d", v.sym)
	default:
		return "<invalid>"
	}
}

// NarrowTo resolves an UnresolvedInt against a required type, bounds
// checking the literal and producing a concrete U8 or U16 TypedValue.
func (v TypedValue) NarrowTo(required BaseType) (TypedValue, error) {
	if v.kind != UnresolvedInt {
		if !v.Type().Equal(required) {
			return TypedValue{}, fmt.Errorf("types: cannot narrow %s to %s", v.Type(), required)
		}
		return v, nil
	}
	switch required.Kind() {
	case U8, Bool:
		if v.i < 0 || v.i > 255 {
			return TypedValue{}, &OutOfBoundsError{Value: v.i, Min: 0, Max: 255}
		}
		return NewU8(uint8(v.i)), nil
	case U16, Pointer:
		if v.i < 0 || v.i > 65535 {
			return TypedValue{}, &OutOfBoundsError{Value: v.i, Min: 0, Max: 65535}
		}
		return NewU16(uint16(v.i)), nil
	default:
		return TypedValue{}, fmt.Errorf("types: cannot narrow integer literal to %s", required)
	}
}

// OutOfBoundsError reports a numeric literal outside the range its declared
// or required type can hold. It is a plain value error here; cerr wraps it
// with a SrcTag for user-facing reporting.
type OutOfBoundsError struct {
	Value    int32
	Min, Max int32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("value %d out of bounds [%d, %d]", e.Value, e.Min, e.Max)
}
