// Package packing formulates 3D ULD box packing as a mixed-integer linear
// program.
//
// Build emits packed, orientation, coordinate and separation variables with
// containment, non-overlap and must-pack constraints and a count, volume or
// weight objective. Solving is left to a solver.LinearSolver; Decode reads
// its assignment back as geometry placements.
package packing
