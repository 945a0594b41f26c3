package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SyntaxError is an extension of encoding/json.SyntaxError but with an error text
// with a better description of the position in the input data (marker and line)
type SyntaxError struct {
	Cause *json.SyntaxError
	Line  int
	help  string
}

func (e *SyntaxError) Error() string { return e.help }

func (e *SyntaxError) Unwrap() error { return e.Cause }

// unmarshalJSONC decodes JSON where // outside a string starts a comment running
// to the end of the line.
func unmarshalJSONC(data []byte, dest interface{}) error {
	data = append([]byte(nil), data...)
	filterComments(data)

	err := json.Unmarshal(data, dest)
	if syntax, ok := err.(*json.SyntaxError); ok {
		return fmtSyntaxError(data, syntax)
	}
	return err
}

// filterComments blanks out comments in place, so offsets stay valid for error messages.
func filterComments(data []byte) {
	var inString, inComment bool

	for i := 1; i < len(data); i++ {
		c := data[i]

		// an unescaped " either starts or ends a string
		if !inComment && c == '"' && data[i-1] != '\\' {
			inString = !inString
		}
		if inString {
			continue
		}

		switch {
		case inComment && c == '\n':
			inComment = false
		case inComment:
			data[i] = ' '
		case c == '/' && data[i-1] == '/':
			inComment = true
			data[i] = ' '
			data[i-1] = ' '
		}
	}
}

// Find out where a Syntax Error occurred in the JSON string
func fmtSyntaxError(js []byte, syntax *json.SyntaxError) error {
	start := bytes.LastIndex(js[:syntax.Offset], []byte{'\n'}) + 1
	line := bytes.Count(js[:start], []byte{'\n'}) + 1
	marker := string(js[start:syntax.Offset]) + "<---"

	return &SyntaxError{
		Cause: syntax,
		Line:  line,
		help: fmt.Sprintf("%s (byte=%d line=%d): %s",
			syntax.Error(), syntax.Offset, line, marker),
	}
}
