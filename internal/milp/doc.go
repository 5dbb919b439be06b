// Package milp describes mixed-integer linear programs independently of any
// solver: bounded variables, linear rows and a linear objective. Models can
// be checked against an assignment and exported in CPLEX LP format.
package milp
