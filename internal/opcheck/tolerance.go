package opcheck

import "fmt"

// Tolerance defines acceptable numeric drift between a reference output and
// the operator under test. Zero values demand exact equality.
type Tolerance struct {
	Abs float64
	Rel float64
}

// Operator names understood by Reference.
const (
	OpReduceAny = "reduce_any"
	OpReduceAll = "reduce_all"
	OpAdamW     = "adamw"
)

// OpTolerances holds the default per-operator parity targets.
var OpTolerances = map[string]Tolerance{
	OpReduceAny: {Abs: 0, Rel: 0},
	OpReduceAll: {Abs: 0, Rel: 0},
	OpAdamW:     {Abs: 1e-5, Rel: 0},
}

// OpTolerance returns the default tolerance for op.
func OpTolerance(op string) (Tolerance, error) {
	t, ok := OpTolerances[op]
	if !ok {
		return Tolerance{}, fmt.Errorf("opcheck: no tolerance configured for op %q", op)
	}

	return t, nil
}
