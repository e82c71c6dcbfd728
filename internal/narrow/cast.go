package narrow

import (
	"github.com/emmylua-go/semacore/internal/syntax"
	"github.com/emmylua-go/semacore/internal/types"
)

// applyCastOps applies one ---@cast tag's operation list to base:
// `+T` unions, `-T` subtracts, a bare type replaces, and the
// `?` modifier targets nil specifically. invert flips add/remove for
// the false branch of a conditional evaluation; when a fallback type
// is declared it is applied as a force cast there instead.
func (e *Engine) applyCastOps(base types.Type, ops []syntax.DocCastOp, invert bool) types.Type {
	out := base
	for _, op := range ops {
		if invert && op.Fallback != nil {
			out = e.P.ConvertDocType(op.Fallback)
			continue
		}
		var opTy types.Type
		if op.NilOnly {
			opTy = types.P(types.Nil)
		} else if op.Type != nil {
			opTy = e.P.ConvertDocType(op.Type)
		}
		action := op.Op
		if invert {
			switch action {
			case "+":
				action = "-"
			case "-":
				action = "+"
			}
		}
		switch action {
		case "+":
			out = types.TypeOpsUnion(out, opTy)
		case "-":
			out = types.TypeOpsRemove(out, opTy)
		default:
			if opTy != nil {
				out = opTy
			}
		}
	}
	return out
}
