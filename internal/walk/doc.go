// Package walk simulates ensembles of discrete-time random walks on the
// hypercubic lattice and derives their return-to-origin statistics.
//
// Every step moves each of the dim coordinates by -1 or +1 with equal
// probability. Position t of a walk is the sum of steps 0..t, so the first
// stored position already reflects one step; the starting origin is never
// recorded and never counted as a return.
//
// The engine is pure: randomness comes from an injected StepSource, and the
// same source state always produces the same Result.
//
// Usage:
//
//	src := random.NewStepSource(42)
//	res, err := walk.Simulate(walk.Params{Dim: 2, Steps: 1000, Walks: 500}, src)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.ReturnProbability)
package walk
