// Package tkutil wraps the Tcl eval extension for the few Tk commands the
// widget API does not expose.
package tkutil

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	evalext "modernc.org/tk9.0/extensions/eval"
)

// Eval formats a Tcl script and evaluates it. Widgets format as their path.
func Eval(format string, a ...any) (string, error) {
	script := fmt.Sprintf(format, a...)
	r, err := evalext.Eval(script)
	if err != nil {
		return "", fmt.Errorf("tk eval=%s; err=%w", script, err)
	}
	return r, nil
}

func EvalOrEmpty(format string, a ...any) string {
	out, err := Eval(format, a...)
	if err != nil {
		slog.Debug("tk eval or empty", slog.Any("error", err))
		return ""
	}
	return out
}

// Atoi parses a Tk integer or screen distance, rounding fractional values.
// Anything unparsable is 0.
func Atoi(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
