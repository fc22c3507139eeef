package sse

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Read parses an event stream and calls fn once per dispatched event.
// Comment lines are skipped and multi-line data is joined with "\n".
func Read(ctx context.Context, r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var eventName string
	var dataBuf strings.Builder
	hasData := false
	flush := func() error {
		if !hasData {
			eventName = ""
			return nil
		}
		payload := dataBuf.String()
		name := eventName
		dataBuf.Reset()
		eventName = ""
		hasData = false
		return fn(name, payload)
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if hasData {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line[len("data:"):], " "))
			hasData = true
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
