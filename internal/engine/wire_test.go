package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		level    int
		decision sat.Literal
	}{
		{0, sat.None},
		{1, 4},
		{3, -7},
	}
	for _, tt := range tests {
		buf := &bytes.Buffer{}
		require.NoError(t, EncodeRequest(buf, tt.level, tt.decision))

		level, decision, err := ParseRequest(buf)
		require.NoError(t, err)
		if level != tt.level || decision != tt.decision {
			t.Errorf("round trip: want (%d, %d), got (%d, %d)", tt.level, tt.decision, level, decision)
		}
	}
}

func TestEncodeRequest_BlankTriggerAtLevelZero(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, EncodeRequest(buf, 0, sat.None))

	want := "TRIGGER_LITERAL: \nDL: 0\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("request mismatch (-want, +got):\n%s", diff)
	}
}

func TestParseRequest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no DL line", "TRIGGER_LITERAL: 3\n"},
		{"bad DL", "TRIGGER_LITERAL: 3\nDL: x\n"},
		{"negative DL", "TRIGGER_LITERAL: 3\nDL: -1\n"},
		{"zero literal", "TRIGGER_LITERAL: 0\nDL: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseRequest(strings.NewReader(tt.in)); !errors.Is(err, ErrGateway) {
				t.Errorf("ParseRequest(): want ErrGateway, got %v", err)
			}
		})
	}
}

const sampleResponse = `--- STATUS ---
STATUS: CONTINUE
DL: 1
CONFLICT_ID: None

--- BCP EXECUTION LOG ---
[DL1] DECIDE     L=1    |
[DL1] SATISFIED        | (1 2)
[DL1] UNIT       L=-2   | (-1 -2)
[DL1] ASSIGN     L=-2   |

--- CURRENT VARIABLE STATE ---
1    | TRUE
2    | FALSE
3    | UNASSIGNED
`

func TestParseResponse(t *testing.T) {
	got, err := ParseResponse(strings.NewReader(sampleResponse))
	require.NoError(t, err)

	want := &Result{
		Verdict:    Continue,
		Level:      1,
		ConflictID: -1,
		Propagated: []sat.Literal{-2},
		Log: []LogEntry{
			{Level: 1, Event: EventDecide, Lit: 1},
			{Level: 1, Event: EventSatisfied, Detail: "(1 2)"},
			{Level: 1, Event: EventUnit, Lit: -2, Detail: "(-1 -2)"},
			{Level: 1, Event: EventAssign, Lit: -2},
		},
		VarState: map[int]sat.LBool{1: sat.True, 2: sat.False, 3: sat.Unassigned},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseResponse() mismatch (-want, +got):\n%s", diff)
	}
}

func TestParseResponse_ConflictID(t *testing.T) {
	in := sectionStatus + "\nSTATUS: CONFLICT\nDL: 2\nCONFLICT_ID: 5\n"
	got, err := ParseResponse(strings.NewReader(in))
	require.NoError(t, err)

	if got.Verdict != Conflict || got.ConflictID != 5 {
		t.Errorf("ParseResponse(): want (CONFLICT, 5), got (%s, %d)", got.Verdict, got.ConflictID)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no STATUS line", sectionStatus + "\nDL: 1\n"},
		{"no DL line", sectionStatus + "\nSTATUS: SAT\n"},
		{"unknown status", sectionStatus + "\nSTATUS: MAYBE\nDL: 1\n"},
		{"bad DL", sectionStatus + "\nSTATUS: SAT\nDL: one\n"},
		{"bad conflict ID", sectionStatus + "\nSTATUS: CONFLICT\nDL: 1\nCONFLICT_ID: x\n"},
		{"line outside sections", "STATUS: SAT\n"},
		{"bad log entry", sectionStatus + "\nSTATUS: SAT\nDL: 1\n" + sectionLog + "\ngarbage\n"},
		{"unknown log event", sectionStatus + "\nSTATUS: SAT\nDL: 1\n" + sectionLog + "\n[DL1] EXPLODE L=1 |\n"},
		{"bad state line", sectionStatus + "\nSTATUS: SAT\nDL: 1\n" + sectionState + "\n1 TRUE\n"},
		{"bad state value", sectionStatus + "\nSTATUS: SAT\nDL: 1\n" + sectionState + "\n1 | PERHAPS\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseResponse(strings.NewReader(tt.in)); !errors.Is(err, ErrGateway) {
				t.Errorf("ParseResponse(): want ErrGateway, got %v", err)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	want := &Result{
		Verdict:    Conflict,
		Level:      3,
		ConflictID: 2,
		Propagated: []sat.Literal{4, -5},
		Log: []LogEntry{
			{Level: 3, Event: EventDecide, Lit: -3},
			{Level: 3, Event: EventUnit, Lit: 4, Detail: "(3 4)"},
			{Level: 3, Event: EventAssign, Lit: 4},
			{Level: 3, Event: EventUnit, Lit: -5, Detail: "(-4 -5)"},
			{Level: 3, Event: EventAssign, Lit: -5},
			{Level: 3, Event: EventConflict, Detail: "(5 -3)"},
		},
		VarState: map[int]sat.LBool{3: sat.False, 4: sat.True, 5: sat.False},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteResponse(buf, want))

	got, err := ParseResponse(buf)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want, +got):\n%s", diff)
	}
}
