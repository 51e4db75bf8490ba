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

import "hasselc/cerr"
import "hasselc/types"

// Check is the second pass over the typed IR (component D): one call per
// block, threading a required type down from assignment/return/condition
// anchors until every expression's type slot is resolved and no
// TypedValue.UnresolvedInt remains.
func Check(blocks []*Block) error {
	for _, blk := range blocks {
		retType := types.TVoid
		if blk.Func != nil {
			retType = blk.Func.ReturnType
		}
		if err := checkStmts(blk.Body, retType); err != nil {
			return err
		}
	}
	return nil
}

func checkStmts(stmts []Statement, retType types.BaseType) error {
	for _, s := range stmts {
		if err := checkStmt(s, retType); err != nil {
			return err
		}
	}
	return nil
}

func checkStmt(s Statement, retType types.BaseType) error {
	switch st := s.(type) {
	case *AssignStmt:
		if err := resolveExpr(st.Left, st.Left.ExprType()); err != nil {
			return err
		}
		required := st.Left.ExprType()
		if err := resolveExpr(st.Right, required); err != nil {
			return err
		}
		st.ValueType = required
		return nil

	case *CallStmt:
		if st.Call == nil {
			return nil
		}
		return checkCallArgs(st.Call)

	case *ConditionalStmt:
		if err := resolveExpr(st.Cond, types.TU8); err != nil {
			return err
		}
		if err := checkStmts(st.WhenTrue, retType); err != nil {
			return err
		}
		return checkStmts(st.WhenFalse, retType)

	case *WhileLoopStmt:
		if err := resolveExpr(st.Cond, types.TU8); err != nil {
			return err
		}
		return checkStmts(st.Body, retType)

	case *ReturnStmt:
		if st.Value == nil {
			if retType.Kind() != types.Void {
				return &cerr.MustReturnAValue{Tag: st.SrcTag}
			}
			st.ValueType = types.TVoid
			return nil
		}
		if err := resolveExpr(st.Value, retType); err != nil {
			return err
		}
		st.ValueType = retType
		return nil

	case *GoToStmt, *BreakStmt, *InlineAsmStmt:
		return nil

	default:
		return nil
	}
}

func checkCallArgs(call *CallExpr) error {
	for _, a := range call.Args {
		if err := resolveExpr(a, a.ExprType()); err != nil {
			return err
		}
	}
	return nil
}

// resolveExpr narrows e's type slot against required, per the rules in
// component D: arithmetic BinaryOps propagate required to both operands;
// comparisons type their operands against each other instead and always
// produce U8; Number(UnresolvedInt) narrows with a bounds check; Symbol and
// Call must already match required exactly.
func resolveExpr(e Expr, required types.BaseType) error {
	switch ex := e.(type) {
	case *NumberExpr:
		narrowed, err := ex.Value.NarrowTo(required)
		if err != nil {
			if oob, ok := err.(*types.OutOfBoundsError); ok {
				return &cerr.OutOfBounds{Tag: ex.SrcTag, Value: oob.Value, Min: oob.Min, Max: oob.Max}
			}
			return &cerr.TypeError{Tag: ex.SrcTag, Expected: required.String(), Actual: ex.Value.String()}
		}
		ex.Value = narrowed
		ex.setType(required)
		return nil

	case *SymbolExpr:
		if !ex.Type.Equal(required) {
			return &cerr.TypeError{Tag: ex.SrcTag, Expected: required.String(), Actual: ex.Type.String()}
		}
		return nil

	case *BinaryOpExpr:
		if ex.Op.IsComparison() {
			common, err := chooseOperandType(ex.Left, ex.Right)
			if err != nil {
				return &cerr.TypeError{Tag: ex.SrcTag, Expected: "comparable operands", Actual: err.Error()}
			}
			if !common.CanCompare(common) {
				return &cerr.TypeError{Tag: ex.SrcTag, Expected: "comparable type", Actual: common.String()}
			}
			if err := resolveExpr(ex.Left, common); err != nil {
				return err
			}
			if err := resolveExpr(ex.Right, common); err != nil {
				return err
			}
			ex.setType(types.TU8)
			if required.Kind() != types.U8 && required.Kind() != types.Bool {
				return &cerr.TypeError{Tag: ex.SrcTag, Expected: required.String(), Actual: "u8"}
			}
			return nil
		}
		if err := resolveExpr(ex.Left, required); err != nil {
			return err
		}
		if err := resolveExpr(ex.Right, required); err != nil {
			return err
		}
		ex.setType(required)
		return nil

	case *CallExpr:
		if !ex.Type.Equal(required) {
			return &cerr.TypeError{Tag: ex.SrcTag, Expected: required.String(), Actual: ex.Type.String()}
		}
		return checkCallArgs(ex)

	case *ArrayIndexExpr:
		if !ex.Type.Equal(required) {
			return &cerr.TypeError{Tag: ex.SrcTag, Expected: required.String(), Actual: ex.Type.String()}
		}
		if err := resolveExpr(ex.Index, resolveNaturalType(ex.Index)); err != nil {
			return err
		}
		return nil

	default:
		return nil
	}
}

// resolveNaturalType picks a type for an expression that doesn't have an
// external requirement imposed on it yet (array indices): unresolved
// literals default to U16 (the native index width), everything else keeps
// whatever type it already carries.
func resolveNaturalType(e Expr) types.BaseType {
	if !isResolved(e) {
		return types.TU16
	}
	return e.ExprType()
}

func isResolved(e Expr) bool {
	switch ex := e.(type) {
	case *NumberExpr:
		return ex.Resolved
	default:
		return true
	}
}

// chooseOperandType applies choose_type to pick a common comparison type
// for two already-typed-or-literal operands, defaulting an UnresolvedInt
// operand to the other side's type.
func chooseOperandType(l, r Expr) (types.BaseType, error) {
	lNum, lIsNum := l.(*NumberExpr)
	rNum, rIsNum := r.(*NumberExpr)
	lUnresolved := lIsNum && lNum.Value.Kind() == types.UnresolvedInt
	rUnresolved := rIsNum && rNum.Value.Kind() == types.UnresolvedInt

	switch {
	case lUnresolved && rUnresolved:
		return types.TU8, nil
	case lUnresolved:
		return r.ExprType(), nil
	case rUnresolved:
		return l.ExprType(), nil
	default:
		return types.ChooseType(l.ExprType(), r.ExprType())
	}
}
