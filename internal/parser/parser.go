// Package parser turns raw diagnostic log text into models.LogEntry values.
package parser

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
)

// lineRe matches
//
//	[<timestamp>] [VEHICLE_ID:<digits>] [<level>] [CODE:<code>] [<message>]
//
// The message runs to the last ']' on the line, so it may itself contain brackets.
var lineRe = regexp.MustCompile(`^\[([^\]]+)\] \[VEHICLE_ID:(\d+)\] \[(\w+)\] \[CODE:(\w+)\] \[(.+)\]$`)

// Parse extracts a LogEntry from a single line. It reports false when the line
// does not match the grammar; such lines are not an error, they are skipped.
func Parse(line string) (models.LogEntry, bool) {
	line = strings.TrimSuffix(line, "\r")
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return models.LogEntry{}, false
	}
	return models.LogEntry{
		Timestamp: m[1],
		VehicleID: m[2],
		Level:     m[3],
		Code:      m[4],
		Message:   m[5],
	}, true
}

// EachLine calls fn for every line of r in order, without the trailing newline.
// Lines are not length-limited. Iteration stops at the first error returned by fn.
func EachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 || err == nil {
			if ferr := fn(strings.TrimSuffix(line, "\n")); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
