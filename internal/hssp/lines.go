package hssp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Line is one physical line of an HSSP file. Num is 1-based and refers to
// the unfiltered input, so error messages point at the right place even
// after NOTATION lines are removed.
type Line struct {
	Num  int
	Text string
}

// notationToken marks the explanatory lines of the header, which never
// carry data.
const notationToken = "NOTATION"

// ReadLines reads r into memory, dropping every line that contains
// NOTATION.
func ReadLines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	// Alignment rows are short, but PROTEINS descriptions are free text.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []Line
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.Contains(text, notationToken) {
			continue
		}
		lines = append(lines, Line{Num: num, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hssp line %d: %w", num+1, err)
	}
	return lines, nil
}
