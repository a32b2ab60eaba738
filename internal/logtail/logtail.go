package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event is one decoded zerolog JSON line.
type Event struct {
	Time    time.Time
	Level   zerolog.Level
	Message string
	Fields  map[string]string
	Raw     string
}

// FieldKeys returns the extra field names in stable order.
func (e Event) FieldKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Read returns at most maxLines from the end of the file at path. A
// maxLines of zero or less returns every line. A missing file yields no
// lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ParseEvent decodes a single zerolog JSON line. Lines that are not JSON
// objects come back as a NoLevel event with the line as Message.
func ParseEvent(line string) Event {
	ev := Event{Raw: line, Level: zerolog.NoLevel}

	trimmed := strings.TrimSpace(line)
	var payload map[string]any
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &payload) != nil {
		ev.Message = trimmed
		return ev
	}

	for key, value := range payload {
		switch key {
		case zerolog.TimestampFieldName:
			if s, ok := value.(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					ev.Time = ts
				}
			}
		case zerolog.LevelFieldName:
			if s, ok := value.(string); ok {
				if lvl, err := zerolog.ParseLevel(s); err == nil {
					ev.Level = lvl
				}
			}
		case zerolog.MessageFieldName:
			ev.Message = fmt.Sprint(value)
		default:
			if ev.Fields == nil {
				ev.Fields = make(map[string]string)
			}
			ev.Fields[key] = formatValue(value)
		}
	}
	return ev
}

// Tail reads the last n lines of path and decodes each one.
func Tail(path string, n int) ([]Event, error) {
	lines, err := Read(path, n)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, ParseEvent(line))
	}
	return events, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
