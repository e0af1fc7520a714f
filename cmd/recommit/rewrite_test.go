package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/recommit/internal/rewrite"
)

func TestDecideOutcome(t *testing.T) {
	fatal := errors.New("completion failed on attempt 1: completion connection_failure: dial tcp")

	tests := []struct {
		name      string
		result    *rewrite.Result
		err       error
		abort     bool
		wantWrite bool
		wantAbort bool
	}{
		{
			name:      "success writes the message",
			result:    &rewrite.Result{Success: true, Message: "feat: x", Attempts: 1},
			wantWrite: true,
		},
		{
			name:   "empty message pass-through",
			result: &rewrite.Result{Success: true, Message: "", Attempts: 0},
		},
		{
			name:      "exhausted budget writes best effort by default",
			result:    &rewrite.Result{Success: false, Message: "last try", Attempts: 3, Violations: []string{"header too long"}},
			wantWrite: true,
		},
		{
			name:      "exhausted budget aborts when configured",
			result:    &rewrite.Result{Success: false, Message: "last try", Attempts: 3, Violations: []string{"header too long"}},
			abort:     true,
			wantAbort: true,
		},
		{
			name:   "fatal failure keeps the original by default",
			result: &rewrite.Result{Success: false, Message: "add feature", Attempts: 1},
			err:    fatal,
		},
		{
			name:      "fatal failure aborts when configured",
			result:    &rewrite.Result{Success: false, Message: "add feature", Attempts: 1},
			err:       fatal,
			abort:     true,
			wantAbort: true,
		},
		{
			name: "nil result never writes",
			err:  fatal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			write, exitErr := decideOutcome(tt.result, tt.err, tt.abort)
			if write != tt.wantWrite {
				t.Errorf("writeMessage = %v, want %v", write, tt.wantWrite)
			}
			if (exitErr != nil) != tt.wantAbort {
				t.Errorf("exitErr = %v, wantAbort %v", exitErr, tt.wantAbort)
			}
		})
	}

	t.Run("abort error names the violations", func(t *testing.T) {
		result := &rewrite.Result{Success: false, Attempts: 3, Violations: []string{"header too long", "missing type"}}
		_, exitErr := decideOutcome(result, nil, true)
		if exitErr == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(exitErr.Error(), "header too long; missing type") {
			t.Errorf("error = %q", exitErr)
		}
	})
}
