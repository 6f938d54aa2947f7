package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// ScriptKey identifies one propagation request.
type ScriptKey struct {
	Level    int
	Decision sat.Literal
}

// Scripted is an engine that replays canned results keyed by the request
// it receives. It exists to exercise the search procedure's control flow
// against engine behaviors that are awkward to reproduce with a real
// engine, such as a mid-search UNSAT verdict.
type Scripted struct {
	Results map[ScriptKey]*Result

	// Calls records every request in arrival order.
	Calls []ScriptKey
}

var _ Engine = (*Scripted)(nil)

// Propagate implements Engine. A request with no scripted result is an
// ErrGateway, which doubles as a way to test gateway-failure handling.
func (s *Scripted) Propagate(_ context.Context, level int, decision sat.Literal) (*Result, error) {
	key := ScriptKey{Level: level, Decision: decision}
	s.Calls = append(s.Calls, key)
	res, ok := s.Results[key]
	if !ok {
		return nil, errors.Wrapf(ErrGateway, "no scripted result for DL %d, trigger %d", level, decision)
	}
	return res, nil
}
