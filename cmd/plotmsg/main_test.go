package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cancelled", context.Canceled, exitInterrupt},
		{"wrapped cancel", fmt.Errorf("listen: %w", context.Canceled), exitInterrupt},
		{"config", perr.New(perr.ErrCodeInvalidConfig, "bad qos"), exitUsage},
		{"input", perr.New(perr.ErrCodeInvalidInput, "odd kwargs"), exitUsage},
		{"address", perr.New(perr.ErrCodeInvalidAddress, "no scheme"), exitUsage},
		{"transport", perr.Wrap(perr.ErrCodeTransport, errors.New("refused"), "bind"), exitTransport},
		{"not found", perr.New(perr.ErrCodeNotFound, "no such key"), exitFailure},
		{"plain", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
