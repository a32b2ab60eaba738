// Package logtail reads the tail of pricewatch's own log file.
//
// # Overview
//
// pricewatch writes zerolog JSON lines to a file because the TUI owns the
// terminal. The activity view reads them back through this package.
//
//  1. Read: the last N raw lines of a file
//  2. ParseEvent: one JSON line decoded into an Event
//  3. Tail: Read followed by ParseEvent for each non-blank line
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory is O(maxLines) regardless of file size. Lines longer than 1MB fail
// the scan. A missing file is treated as empty.
//
//	events, err := logtail.Tail(cfg.LogFile, 200)
//	if err != nil {
//		return err
//	}
//	for _, ev := range events {
//		fmt.Println(ev.Time.Format(time.Kitchen), ev.Level, ev.Message)
//	}
//
// # Event Decoding
//
// The zerolog field names (time, level, message) fill the typed fields.
// Everything else lands in Fields as a string: numbers formatted with %g,
// nested values re-encoded as JSON. A line that is not a JSON object keeps
// its text as Message with zerolog.NoLevel.
package logtail
