// Package solver solves milp models. BranchAndBound explores integer
// branches depth first and solves each relaxation with a dense
// bounded-variable simplex built on gonum matrices.
package solver
