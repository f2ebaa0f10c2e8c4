// Package calendar renders planned subtasks as an iCalendar (RFC 5545) file.
package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	prodID     = "-//teamplan//teamplan//EN"
	dateLayout = "20060102T150405Z"
	// maxLineOctets is the folding limit for content lines, excluding CRLF.
	maxLineOctets = 75
)

// Event is one calendar entry.
type Event struct {
	UID         string
	Summary     string
	Description string
	Attendee    string
	Start       time.Time
	End         time.Time
}

// Write renders events as a VCALENDAR named name. Timestamps are written
// in UTC, text is escaped and long lines are folded.
func Write(w io.Writer, name string, events []Event) error {
	return WriteAt(w, name, events, time.Now())
}

// WriteAt is Write with an explicit DTSTAMP.
func WriteAt(w io.Writer, name string, events []Event, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	if name != "" {
		lines = append(lines, "X-WR-CALNAME:"+Escape(name))
	}

	for _, e := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+e.UID,
			"DTSTAMP:"+stamp.UTC().Format(dateLayout),
			"DTSTART:"+e.Start.UTC().Format(dateLayout),
			"DTEND:"+e.End.UTC().Format(dateLayout),
			"SUMMARY:"+Escape(e.Summary),
		)
		if e.Description != "" {
			lines = append(lines, "DESCRIPTION:"+Escape(e.Description))
		}
		if e.Attendee != "" {
			lines = append(lines, fmt.Sprintf("ATTENDEE;CN=%s:mailto:%s", quoteParam(e.Attendee), mailbox(e.Attendee)))
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")

	for _, l := range lines {
		if _, err := bw.WriteString(Fold(l)); err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}
	}
	return bw.Flush()
}

// Escape escapes a TEXT value.
func Escape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
		"\r", `\n`,
	)
	return r.Replace(s)
}

// Fold splits a content line into CRLF-terminated chunks of at most 75
// octets, continuation lines starting with a space. UTF-8 sequences are
// never split.
func Fold(line string) string {
	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !startsRune(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// The leading space counts towards the next line.
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
	return b.String()
}

// startsRune reports whether b can begin a UTF-8 sequence.
func startsRune(b byte) bool {
	return b&0xC0 != 0x80
}

func quoteParam(s string) string {
	return `"` + strings.NewReplacer(`"`, "'", "\n", " ", "\r", " ").Replace(s) + `"`
}

// mailbox derives a placeholder address for a member name.
func mailbox(name string) string {
	local := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '_':
			return '.'
		}
		return -1
	}, name)
	if local == "" {
		local = "member"
	}
	return local + "@teamplan.invalid"
}
