package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteLP writes the model in CPLEX LP format, the interchange format
// accepted by Gurobi, CPLEX, HiGHS, SCIP and lp_solve.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ Problem: %s\n", m.Name)
	if m.Objective.Maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	fmt.Fprintf(bw, " obj: %s\n", m.expression(m.Objective.Terms))

	bw.WriteString("Subject To\n")
	for i, r := range m.Rows {
		name := r.Name
		if name == "" {
			name = "r" + strconv.Itoa(i)
		}
		fmt.Fprintf(bw, " %s: %s %s %s\n", name, m.expression(r.Terms), r.Sense, formatNumber(r.RHS))
	}

	bw.WriteString("Bounds\n")
	for _, v := range m.Vars {
		if line := boundLine(v); line != "" {
			fmt.Fprintf(bw, " %s\n", line)
		}
	}

	m.writeSection(bw, "Binaries", Binary)
	m.writeSection(bw, "Generals", Integer)
	bw.WriteString("End\n")

	return bw.Flush()
}

func (m *Model) writeSection(bw *bufio.Writer, header string, typ VarType) {
	var names []string
	for _, v := range m.Vars {
		if v.Type == typ {
			names = append(names, v.Name)
		}
	}
	if len(names) == 0 {
		return
	}
	bw.WriteString(header + "\n")
	for _, n := range names {
		fmt.Fprintf(bw, " %s\n", n)
	}
}

func (m *Model) expression(terms []Term) string {
	if len(terms) == 0 {
		if len(m.Vars) == 0 {
			return "0"
		}
		return "0 " + m.Vars[0].Name
	}
	var sb strings.Builder
	for i, t := range terms {
		coef := t.Coef
		switch {
		case i == 0 && coef < 0:
			sb.WriteString("- ")
			coef = -coef
		case i > 0 && coef < 0:
			sb.WriteString(" - ")
			coef = -coef
		case i > 0:
			sb.WriteString(" + ")
		}
		if coef != 1 {
			sb.WriteString(formatNumber(coef))
			sb.WriteByte(' ')
		}
		sb.WriteString(m.Vars[t.Var].Name)
	}
	return sb.String()
}

func boundLine(v Var) string {
	lowerDefault := v.Lower == 0
	upperDefault := math.IsInf(v.Upper, 1) || (v.Type == Binary && v.Upper == 1)

	switch {
	case v.Lower == v.Upper:
		return fmt.Sprintf("%s = %s", v.Name, formatNumber(v.Lower))
	case math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1):
		return v.Name + " free"
	case lowerDefault && upperDefault:
		return ""
	case upperDefault:
		return fmt.Sprintf("%s >= %s", v.Name, formatNumber(v.Lower))
	default:
		return fmt.Sprintf("%s <= %s <= %s", formatNumber(v.Lower), v.Name, formatNumber(v.Upper))
	}
}

func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
