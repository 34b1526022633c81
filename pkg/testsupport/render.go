package testsupport

import (
	"bytes"
	"io"
	"testing"
)

// CaptureTemplateOutput runs a render function against a buffer and returns
// both the returned string and what was written.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
