// Package html renders a widget tree snapshot as a static HTML fragment. Text
// taken from message data (labels, string values) is sanitized with
// bluemonday; colors and spacing come from a go-theme manifest.
package html
