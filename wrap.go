package loopguard

// Wrap produces a guarded version of fn with the same calling convention:
// off the loop goroutine (and on exempt or warned calls) it is a
// pass-through, on a denied call it returns the guard's [*BlockingCallError]
// without executing fn. The argument is mapped for predicate evaluation as
// Args{argKey: arg}; pass an empty argKey for operations whose predicate
// ignores arguments.
//
// Use [Gateway.Guard] to create guards for operations beyond the fixed set:
//
//	queryGuard := gw.Guard("db-query", loopguard.StrictCore, nil)
//	guardedQuery := loopguard.Wrap(queryGuard, "", runQuery)
func Wrap[A, R any](g *Guard, argKey string, fn func(A) (R, error)) func(A) (R, error) {
	return func(arg A) (R, error) {
		var args Args
		if argKey != "" {
			args = Args{argKey: arg}
		}
		if err := g.Check(args); err != nil {
			var zero R
			return zero, err
		}
		return fn(arg)
	}
}
