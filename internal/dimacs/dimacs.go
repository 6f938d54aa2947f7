// Package dimacs loads DIMACS CNF files into formulas, validating literal
// ranges and the clause count declared by the header while reading.
package dimacs

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// Load reads the DIMACS CNF file at the given path. Files with a ".gz"
// extension are decompressed on the fly.
func Load(filename string) (*sat.Formula, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer file.Close()

	rc := io.ReadCloser(file)
	if strings.HasSuffix(filename, ".gz") {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading file %q", filename)
		}
		defer rc.Close()
	}

	return Read(rc)
}

// Read parses a DIMACS CNF formula. Malformed input (missing or non-CNF
// header, out-of-range literal, clause count not matching the header)
// fails with sat.ErrMalformedFormula.
func Read(r io.Reader) (*sat.Formula, error) {
	b := &builder{formula: &sat.Formula{}}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		if errors.Is(err, sat.ErrMalformedFormula) {
			return nil, err
		}
		return nil, errors.Wrapf(sat.ErrMalformedFormula, "%v", err)
	}
	if !b.sawHeader {
		return nil, errors.Wrap(sat.ErrMalformedFormula, "missing problem header")
	}
	if got := len(b.formula.Clauses); got != b.declaredClauses {
		return nil, errors.Wrapf(sat.ErrMalformedFormula, "header declares %d clauses, found %d", b.declaredClauses, got)
	}
	return b.formula, nil
}

// builder implements dimacs.Builder.
type builder struct {
	formula         *sat.Formula
	declaredClauses int
	sawHeader       bool
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.Wrapf(sat.ErrMalformedFormula, "problems of type %q are not supported", problem)
	}
	if nVars < 0 || nClauses < 0 {
		return errors.Wrapf(sat.ErrMalformedFormula, "invalid problem header: %d variables, %d clauses", nVars, nClauses)
	}
	b.formula.NumVars = nVars
	b.declaredClauses = nClauses
	b.sawHeader = true
	return nil
}

func (b *builder) Clause(lits []int) error {
	if !b.sawHeader {
		return errors.Wrap(sat.ErrMalformedFormula, "clause before problem header")
	}
	clause := make(sat.Clause, len(lits))
	for i, l := range lits {
		if l == 0 || l > b.formula.NumVars || -l > b.formula.NumVars {
			return errors.Wrapf(sat.ErrMalformedFormula, "clause %d: literal %d out of range [1, %d]", len(b.formula.Clauses), l, b.formula.NumVars)
		}
		clause[i] = sat.Literal(l)
	}
	b.formula.Clauses = append(b.formula.Clauses, clause)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}
