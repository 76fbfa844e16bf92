package storage

import (
	"strings"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/model"
)

// Separator is written between fields.
const Separator = " | "

// verifiedSplitter separates the verification tag from the review text in
// an extracted body.
const verifiedSplitter = "|"

// Header returns the header line of the review file.
func Header() string {
	return strings.Join(model.Columns(), Separator)
}

// SplitVerified splits body on its first '|' into the trimmed verification
// tag and review text. A body without '|' is returned unchanged with the
// not-verified tag.
func SplitVerified(body string) (verified, text string) {
	tag, rest, found := strings.Cut(body, verifiedSplitter)
	if !found {
		return config.DefaultNotVerifiedTag, body
	}
	return strings.TrimSpace(tag), strings.TrimSpace(rest)
}

var fieldEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	"\n", `\n`,
	"\r", `\r`,
)

// escapeField encodes the characters that would break the line layout.
func escapeField(s string) string {
	return fieldEscaper.Replace(s)
}

// splitLine splits a record line on unescaped '|' and decodes each field.
// Fields are trimmed of surrounding whitespace before decoding, so escaped
// whitespace at the edges of a value is kept.
func splitLine(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	flush := func() {
		fields = append(fields, unescapeField(strings.TrimSpace(cur.String())))
		cur.Reset()
	}

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && i+1 < len(line):
			cur.WriteByte(c)
			cur.WriteByte(line[i+1])
			i++
		case c == '|':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

// unescapeField reverses escapeField. An unknown escape keeps the escaped
// character; a trailing lone backslash is kept as is.
func unescapeField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
