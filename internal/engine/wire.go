package engine

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// Wire protocol section markers, as produced by the inference engine.
const (
	sectionStatus = "--- STATUS ---"
	sectionLog    = "--- BCP EXECUTION LOG ---"
	sectionState  = "--- CURRENT VARIABLE STATE ---"
)

// EncodeRequest writes a propagation request. The trigger literal is left
// blank for the level 0 pre-check.
func EncodeRequest(w io.Writer, level int, decision sat.Literal) error {
	trigger := ""
	if decision != sat.None {
		trigger = decision.String()
	}
	_, err := fmt.Fprintf(w, "TRIGGER_LITERAL: %s\nDL: %d\n", trigger, level)
	return err
}

// ParseRequest parses a propagation request, the engine-side half of the
// protocol. A blank trigger literal parses as sat.None.
func ParseRequest(r io.Reader) (level int, decision sat.Literal, err error) {
	sc := bufio.NewScanner(r)
	seenLevel := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "TRIGGER_LITERAL:"):
			v := strings.TrimSpace(strings.TrimPrefix(line, "TRIGGER_LITERAL:"))
			if v == "" {
				decision = sat.None
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil || n == 0 {
				return 0, sat.None, errors.Wrapf(ErrGateway, "invalid trigger literal %q", v)
			}
			decision = sat.Literal(n)
		case strings.HasPrefix(line, "DL:"):
			v := strings.TrimSpace(strings.TrimPrefix(line, "DL:"))
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return 0, sat.None, errors.Wrapf(ErrGateway, "invalid decision level %q", v)
			}
			level = n
			seenLevel = true
		}
	}
	if err := sc.Err(); err != nil {
		return 0, sat.None, errors.Wrapf(ErrGateway, "read request: %v", err)
	}
	if !seenLevel {
		return 0, sat.None, errors.Wrap(ErrGateway, "request has no DL line")
	}
	return level, decision, nil
}

// WriteResponse renders a propagation result in the wire format.
func WriteResponse(w io.Writer, res *Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", sectionStatus)
	fmt.Fprintf(bw, "STATUS: %s\n", res.Verdict)
	fmt.Fprintf(bw, "DL: %d\n", res.Level)
	if res.ConflictID >= 0 {
		fmt.Fprintf(bw, "CONFLICT_ID: %d\n", res.ConflictID)
	} else {
		fmt.Fprintf(bw, "CONFLICT_ID: None\n")
	}

	fmt.Fprintf(bw, "\n%s\n", sectionLog)
	for _, e := range res.Log {
		fmt.Fprintf(bw, "%s\n", e)
	}

	fmt.Fprintf(bw, "\n%s\n", sectionState)
	vars := make([]int, 0, len(res.VarState))
	for v := range res.VarState {
		vars = append(vars, v)
	}
	sort.Ints(vars)
	for _, v := range vars {
		fmt.Fprintf(bw, "%-4d | %s\n", v, res.VarState[v])
	}

	return bw.Flush()
}

// ParseResponse parses an engine response. The response must be fully
// parsed before the gateway returns: a missing STATUS or DL line, or any
// malformed log or variable-state line, fails with ErrGateway.
func ParseResponse(r io.Reader) (*Result, error) {
	res := &Result{ConflictID: -1, VarState: map[int]sat.LBool{}}

	seenStatus := false
	seenLevel := false
	section := ""

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch line {
		case sectionStatus, sectionLog, sectionState:
			section = line
			continue
		}

		switch section {
		case sectionStatus:
			if err := parseStatusLine(res, line, &seenStatus, &seenLevel); err != nil {
				return nil, err
			}
		case sectionLog:
			entry, err := parseLogEntry(line)
			if err != nil {
				return nil, err
			}
			res.Log = append(res.Log, entry)
			if entry.Event == EventAssign && entry.Lit != sat.None {
				res.Propagated = append(res.Propagated, entry.Lit)
			}
		case sectionState:
			v, val, err := parseStateLine(line)
			if err != nil {
				return nil, err
			}
			res.VarState[v] = val
		default:
			return nil, errors.Wrapf(ErrGateway, "line outside any section: %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrGateway, "read response: %v", err)
	}
	if !seenStatus {
		return nil, errors.Wrap(ErrGateway, "response has no STATUS line")
	}
	if !seenLevel {
		return nil, errors.Wrap(ErrGateway, "response has no DL line")
	}
	return res, nil
}

func parseStatusLine(res *Result, line string, seenStatus, seenLevel *bool) error {
	switch {
	case strings.HasPrefix(line, "STATUS:"):
		v, err := ParseVerdict(strings.TrimSpace(strings.TrimPrefix(line, "STATUS:")))
		if err != nil {
			return err
		}
		res.Verdict = v
		*seenStatus = true
	case strings.HasPrefix(line, "DL:"):
		v := strings.TrimSpace(strings.TrimPrefix(line, "DL:"))
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.Wrapf(ErrGateway, "invalid decision level %q", v)
		}
		res.Level = n
		*seenLevel = true
	case strings.HasPrefix(line, "CONFLICT_ID:"):
		v := strings.TrimSpace(strings.TrimPrefix(line, "CONFLICT_ID:"))
		if strings.EqualFold(v, "none") {
			res.ConflictID = -1
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.Wrapf(ErrGateway, "invalid conflict ID %q", v)
		}
		res.ConflictID = n
	default:
		return errors.Wrapf(ErrGateway, "unexpected status line %q", line)
	}
	return nil
}

func parseLogEntry(line string) (LogEntry, error) {
	if !strings.HasPrefix(line, "[DL") {
		return LogEntry{}, errors.Wrapf(ErrGateway, "malformed log entry %q", line)
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return LogEntry{}, errors.Wrapf(ErrGateway, "malformed log entry %q", line)
	}
	level, err := strconv.Atoi(line[3:end])
	if err != nil || level < 0 {
		return LogEntry{}, errors.Wrapf(ErrGateway, "malformed log entry level in %q", line)
	}

	rest := strings.TrimSpace(line[end+1:])
	detail := ""
	if i := strings.IndexByte(rest, '|'); i >= 0 {
		detail = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return LogEntry{}, errors.Wrapf(ErrGateway, "log entry without event %q", line)
	}
	entry := LogEntry{Level: level, Event: fields[0], Detail: detail}
	switch entry.Event {
	case EventDecide, EventUnit, EventAssign, EventSatisfied, EventConflict:
	default:
		return LogEntry{}, errors.Wrapf(ErrGateway, "unknown log event %q", fields[0])
	}

	if len(fields) > 1 {
		if !strings.HasPrefix(fields[1], "L=") {
			return LogEntry{}, errors.Wrapf(ErrGateway, "malformed log entry literal in %q", line)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(fields[1], "L="))
		if err != nil || n == 0 {
			return LogEntry{}, errors.Wrapf(ErrGateway, "malformed log entry literal in %q", line)
		}
		entry.Lit = sat.Literal(n)
	}
	return entry, nil
}

func parseStateLine(line string) (int, sat.LBool, error) {
	parts := strings.SplitN(line, "|", 2)
	if len(parts) != 2 {
		return 0, sat.Unassigned, errors.Wrapf(ErrGateway, "malformed variable state line %q", line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || v <= 0 {
		return 0, sat.Unassigned, errors.Wrapf(ErrGateway, "malformed variable in state line %q", line)
	}
	switch val := strings.TrimSpace(parts[1]); val {
	case "TRUE":
		return v, sat.True, nil
	case "FALSE":
		return v, sat.False, nil
	case "UNASSIGNED":
		return v, sat.Unassigned, nil
	default:
		return 0, sat.Unassigned, errors.Wrapf(ErrGateway, "malformed value in state line %q", line)
	}
}
