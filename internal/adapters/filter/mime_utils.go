package filter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
)

// NormalizeMessage turns a raw RFC 5322 message into the plain text the
// detector reads: decoded From, To and Subject headers, the text and HTML
// bodies, and one "Attachment: <name>" line per attached file.
func NormalizeMessage(raw []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse message: %w", err)
	}

	var b strings.Builder
	for _, name := range []string{"From", "To", "Subject"} {
		if v := env.GetHeader(name); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, v)
		}
	}
	b.WriteString("\n")

	if env.Text != "" {
		b.WriteString(env.Text)
		b.WriteString("\n")
	}
	if env.HTML != "" {
		b.WriteString(env.HTML)
		b.WriteString("\n")
	}
	for _, part := range env.Attachments {
		if part.FileName != "" {
			fmt.Fprintf(&b, "Attachment: %s\n", part.FileName)
		}
	}

	return b.String(), nil
}

// headerBlockEnd returns the offset where the message body starts, or
// len(raw) when there is no blank line
func headerBlockEnd(raw []byte) int {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return i + 4
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return i + 2
	}
	return len(raw)
}

// prefixSubject adds prefix to the Subject header of a raw message unless it
// is already there. Messages without a Subject get one.
func prefixSubject(raw []byte, prefix string) []byte {
	end := headerBlockEnd(raw)
	header, body := raw[:end], raw[end:]

	lines := bytes.SplitAfter(header, []byte("\n"))
	for i, line := range lines {
		if len(line) < len("subject:") || !strings.EqualFold(string(line[:len("subject:")]), "subject:") {
			continue
		}
		value := bytes.TrimLeft(line[len("subject:"):], " \t")
		if bytes.HasPrefix(value, []byte(prefix)) {
			return raw
		}
		lines[i] = append([]byte("Subject: "+prefix), value...)

		out := bytes.Join(lines, nil)
		return append(out, body...)
	}

	out := make([]byte, 0, len(raw)+len(prefix)+11)
	out = append(out, "Subject: "+prefix+"\r\n"...)
	return append(out, raw...)
}
