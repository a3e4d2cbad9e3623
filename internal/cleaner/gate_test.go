package cleaner

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fenilsonani/stalesweep/internal/classifier"
	"github.com/fenilsonani/stalesweep/internal/scanner"
)

func candidate(path string) classifier.Candidate {
	return classifier.Candidate{
		ScannedFile: scanner.ScannedFile{
			FullPath:      path,
			SizeBytes:     2048,
			LastWriteTime: time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local),
		},
		SourceLocationDescription: "Test",
	}
}

func TestGate_Decide(t *testing.T) {
	tests := []struct {
		name       string
		gate       Gate
		wantDelete bool
		wantReason string
	}{
		{"approved", Gate{Confirm: AlwaysApprove}, true, ""},
		{"declined", Gate{Confirm: AlwaysDecline}, false, ReasonNotConfirmed},
		{"nil confirm declines", Gate{}, false, ReasonNotConfirmed},
		{"what-if overrides approval", Gate{Confirm: AlwaysApprove, WhatIf: true}, false, ReasonWhatIf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.gate.Decide(candidate("/tmp/a"))
			assert.Equal(t, tt.wantDelete, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestGate_WhatIfNeverAsks(t *testing.T) {
	asked := 0
	g := Gate{
		Confirm: func(classifier.Candidate) bool { asked++; return true },
		WhatIf:  true,
	}

	g.Decide(candidate("/tmp/a"))
	g.Decide(candidate("/tmp/b"))
	assert.Equal(t, 0, asked)
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []bool
	}{
		{"yes and no", "y\nn\nyes\n", []bool{true, false, true}},
		{"all is sticky", "n\na\n", []bool{false, true, true, true}},
		{"quit is sticky", "y\nq\n", []bool{true, false, false}},
		{"invalid answer re-prompts", "maybe\nY\n", []bool{true}},
		{"end of input declines", "y\n", []bool{true, false, false}},
		{"answer without newline", "y", []bool{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got := make([]bool, 0, len(tt.want))
			for range tt.want {
				got = append(got, p.Confirm(candidate("/tmp/file.log")))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_ShowsCandidate(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("bogus\nn\n"), &out)

	p.Confirm(candidate("/tmp/file.log"))

	text := out.String()
	assert.Contains(t, text, "Delete /tmp/file.log (2.00 KB, last written 2026-01-01 08:00:00)? [y/n/a/q]: ")
	assert.Contains(t, text, "Please answer y, n, a or q.")
}
