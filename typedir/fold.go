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
package typedir

import (
	"hasselc/ast"
	"hasselc/cerr"
	"hasselc/srctag"
	"hasselc/symtab"
	"hasselc/types"
)

// foldConst constant-folds a const declaration's initializer against its
// declared type. Only number literals, binary ops of constants, and
// references to previously declared constants are foldable, per the
// source material's restriction that constant folding never reaches into
// runtime state.
func foldConst(e ast.Expr, want types.BaseType, table symtab.Table) (types.TypedValue, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		v, err := types.NewUnresolvedInt(int32(ex.Value)).NarrowTo(want)
		if oob, ok := err.(*types.OutOfBoundsError); ok {
			return types.TypedValue{}, &cerr.OutOfBounds{Tag: srctag.New(ex.Pos()), Value: oob.Value, Min: oob.Min, Max: oob.Max}
		}
		return v, err

	case *ast.Ident:
		sym, ok := table.FindByName(ex.Name)
		if !ok || sym.Kind != symtab.SymConstant {
			return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "'" + ex.Name + "' is not a constant"}
		}
		return sym.Constant.NarrowTo(want)

	case *ast.BinaryExpr:
		l, err := foldConst(ex.Left, want, table)
		if err != nil {
			return types.TypedValue{}, err
		}
		r, err := foldConst(ex.Right, want, table)
		if err != nil {
			return types.TypedValue{}, err
		}
		return foldBinary(ex, l, r, want)

	default:
		return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(e.Pos()), Reason: "not a constant expression"}
	}
}

func foldBinary(ex *ast.BinaryExpr, l, r types.TypedValue, want types.BaseType) (types.TypedValue, error) {
	var lv, rv int64
	switch want.Kind() {
	case types.U8:
		lv, rv = int64(l.U8Value()), int64(r.U8Value())
	case types.U16, types.Pointer:
		lv, rv = int64(l.U16Value()), int64(r.U16Value())
	default:
		return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "unsupported constant type"}
	}

	var result int64
	isCompare := false
	switch ex.Op {
	case ast.TK_PLUS:
		result = lv + rv
	case ast.TK_MINUS:
		result = lv - rv
	case ast.TK_EQ:
		isCompare, result = true, boolInt(lv == rv)
	case ast.TK_NE:
		isCompare, result = true, boolInt(lv != rv)
	case ast.TK_LT:
		isCompare, result = true, boolInt(lv < rv)
	case ast.TK_LE:
		isCompare, result = true, boolInt(lv <= rv)
	case ast.TK_GT:
		isCompare, result = true, boolInt(lv > rv)
	case ast.TK_GE:
		isCompare, result = true, boolInt(lv >= rv)
	default:
		return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "unsupported constant operator"}
	}

	if isCompare {
		return types.NewUnresolvedInt(int32(result)).NarrowTo(want)
	}

	switch want.Kind() {
	case types.U8:
		if result < 0 || result > 255 {
			return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "overflow"}
		}
		return types.NewU8(uint8(result)), nil
	case types.U16, types.Pointer:
		if result < 0 || result > 65535 {
			return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "overflow"}
		}
		return types.NewU16(uint16(result)), nil
	default:
		return types.TypedValue{}, &cerr.ConstEvaluationFailed{Tag: srctag.New(ex.Pos()), Reason: "unsupported constant type"}
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
