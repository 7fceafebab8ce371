// Package trace reads memory access traces and records how the accesses
// are translated.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// ErrTraceUnreadable is returned when a trace file cannot be opened.
var ErrTraceUnreadable = errors.New("trace cannot be read")

// An Access is one record of a trace.
type Access struct {
	Addr uint32
	Mode string
	Line int
}

// A Reader provides the accesses of a trace one by one. Next returns io.EOF
// after the last access.
type Reader interface {
	Next() (Access, error)
}

// MaxLineLength is the longest line that a TextReader parses. Longer lines
// are skipped as malformed.
const MaxLineLength = 4096

// TextReader parses traces that have one access per line. A line holds a
// hexadecimal address, optionally prefixed with 0x, and an optional access
// mode. Blank lines and lines starting with # are ignored. Lines that cannot
// be parsed are skipped.
type TextReader struct {
	reader    *bufio.Reader
	logger    *log.Logger
	line      int
	malformed int
}

// NewTextReader creates a TextReader that reads from r.
func NewTextReader(r io.Reader) *TextReader {
	return &TextReader{
		reader: bufio.NewReader(r),
	}
}

// SetLogger sets the logger that reports the skipped lines. Skipped lines
// are not reported if no logger is set.
func (r *TextReader) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Malformed returns the number of lines that have been skipped because they
// could not be parsed.
func (r *TextReader) Malformed() int {
	return r.malformed
}

// Next returns the next access in the trace.
func (r *TextReader) Next() (Access, error) {
	for {
		line, tooLong, err := r.readLine()
		if err != nil {
			return Access{}, err
		}

		r.line++

		if tooLong {
			r.skip(fmt.Errorf("line longer than %d bytes", MaxLineLength))
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		access, err := parseLine(text)
		if err != nil {
			r.skip(err)
			continue
		}

		access.Line = r.line

		return access, nil
	}
}

func (r *TextReader) skip(reason error) {
	r.malformed++
	if r.logger != nil {
		r.logger.Printf("skipping line %d: %v", r.line, reason)
	}
}

// readLine returns the next line without its line ending. Lines longer than
// MaxLineLength are consumed entirely but only reported as too long. io.EOF
// is returned only when there is no more line.
func (r *TextReader) readLine() (string, bool, error) {
	var buf []byte

	tooLong := false
	read := false

	for {
		chunk, isPrefix, err := r.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && read {
				return string(buf), tooLong, nil
			}

			return "", false, err
		}

		read = true

		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > MaxLineLength {
				tooLong = true
				buf = nil
			}
		}

		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func parseLine(text string) (Access, error) {
	fields := strings.Fields(text)

	addrStr := strings.TrimPrefix(strings.ToLower(fields[0]), "0x")

	addr, err := strconv.ParseUint(addrStr, 16, 32)
	if err != nil {
		return Access{}, fmt.Errorf("invalid address %q", fields[0])
	}

	access := Access{Addr: uint32(addr)}
	if len(fields) > 1 {
		access.Mode = fields[1]
	}

	return access, nil
}

// A FileReader is a TextReader that owns the trace file it reads.
type FileReader struct {
	*TextReader

	file *os.File
}

// Open opens a trace file.
func Open(path string) (*FileReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTraceUnreadable, err)
	}

	return &FileReader{
		TextReader: NewTextReader(file),
		file:       file,
	}, nil
}

// Close closes the trace file.
func (r *FileReader) Close() error {
	return r.file.Close()
}
