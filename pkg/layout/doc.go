// Package layout assigns 2D coordinates to the nucleotides of a structure
// graph.
//
// Two strategies are available:
//
//   - [Circular] places node i at angle 2πi/n on the unit circle. It is
//     cheap and stable, which makes it useful for very large inputs and
//     for comparing structures of equal length side by side.
//
//   - [ForceDirected] runs localized stress majorization. Target distances
//     are hop counts in the bond graph (backbone and pairing bonds both have
//     length 1), computed by one breadth-first search per node. Starting
//     from a circle scaled so that neighbours are one unit apart, every node
//     in turn moves to the minimizer of a quadratic majorant of the
//     weighted stress
//
//     stress(X) = Σ_{i<j} d_ij⁻² (‖x_i − x_j‖ − d_ij)²
//
//     with all other nodes held fixed. Sequential updates guarantee the
//     stress is non-increasing from sweep to sweep. Iteration stops when the
//     relative improvement of a sweep falls below the tolerance or the
//     iteration cap is reached.
//
// # Disconnected graphs
//
// Each connected component is laid out on its own and the results are
// packed left to right. The layout is still returned, together with an
// error carrying the DISCONNECTED_GRAPH code. Callers should log it as a
// warning and proceed:
//
//	l, err := layout.Compute(s, layout.Options{})
//	if err != nil && !errors.IsWarning(err) {
//	    return err
//	}
//
// # Determinism
//
// Coincident nodes are separated with a small random nudge drawn from a PCG
// generator seeded by [Options.Seed] and the component number, so a fixed
// seed reproduces the same layout no matter how many workers are used.
package layout
