package gate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/MEKXH/toolgate/internal/sanitize"
)

const (
	noInput           = "No input"
	logInputMaxLength = 100
)

// Pending describes one gated invocation while it waits for a decision.
// It lives only for the duration of that invocation.
type Pending struct {
	ActionName string
	// Input is the full representation shown to the decision maker.
	Input string
	// SafeInput is the bounded, log-safe form of Input.
	SafeInput string
}

func newPending(name string, input any) Pending {
	repr := FormatInput(input)
	return Pending{
		ActionName: name,
		Input:      repr,
		SafeInput:  sanitize.Value(repr, logInputMaxLength),
	}
}

// Message is the text handed to the suspender.
func (p Pending) Message() string {
	return fmt.Sprintf("About to execute tool: '%s'\n\nInput:\n%s\n\nApprove execution? (yes/no)", p.ActionName, p.Input)
}

// FormatInput renders tool input for a human. Maps, slices and arrays are
// indented JSON, raw JSON bytes are re-indented, everything else uses its
// text form.
func FormatInput(input any) string {
	switch v := input.(type) {
	case nil:
		return noInput
	case string:
		return v
	case json.RawMessage:
		return indentJSON(v)
	case []byte:
		return indentJSON(v)
	}

	switch reflect.ValueOf(input).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		data, err := json.MarshalIndent(input, "", "  ")
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(input)
}

func indentJSON(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return noInput
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
