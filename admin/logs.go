// Package admin holds operator-only endpoints. Every route here is mounted
// behind auth.Middleware and auth.RequireRole(admin).
package admin

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
)

const (
	DefaultLines = 100
	MaxLines     = 1000

	maxLineBytes = 1 << 20
)

// TailLines returns up to n trailing lines of r, oldest first.
// Lines longer than 1 MiB are truncated.
func TailLines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	ring := make([]string, n)
	count := 0

	br := bufio.NewReader(r)
	for {
		line, err := readLine(br)
		if len(line) > 0 || err == nil {
			ring[count%n] = line
			count++
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	return append(ring[start:], ring[:start]...), nil
}

// readLine reads one '\n'-terminated line without the terminator, keeping at
// most maxLineBytes of it.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return string(buf), err
		}
		if room := maxLineBytes - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			buf = append(buf, chunk...)
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

// TailFile is TailLines over the file at path. A missing file has no lines.
func TailFile(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return TailLines(f, n)
}
