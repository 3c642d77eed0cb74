package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. The input is passed through with line
// endings normalized, since footnote definitions and page trailers are
// recognized line-wise downstream.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, _ string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(strings.TrimRight(scanner.Text(), " \t"))
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
