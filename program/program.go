// Package program reads and writes LS-8 program images.
//
// An image is text with one byte per line, written as eight binary digits.
// A '#' starts a comment. Lines with no digits do not take an address.
//
//	10000010 # LDI R0,8
//	00000000
//	00001000
package program

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strconv"
	"strings"
)

const (
	IMAGE_LIMIT = 256 // Bytes an image may hold; the size of LS-8 memory.
	DIGITS      = 8   // Binary digits per line.
)

// Line is a single byte of the image and where it came from.
type Line struct {
	LineNo  int    // Source line, starting at 1.
	Address int    // Memory address of the byte.
	Value   byte   // The byte.
	Comment string // Comment text, without the '#'.
}

// Program is a parsed image.
type Program struct {
	Lines []Line
}

// Open reads the image at path.
func Open(path string) (prog *Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(ErrProgramNotFound, err)
		}
		return
	}
	defer inf.Close()

	prog, err = Parse(inf)
	return
}

// Parse reads an image. Nothing is returned unless every line is valid.
func Parse(r io.Reader) (prog *Program, err error) {
	var lines []Line

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := scanner.Text()

		token, comment, _ := strings.Cut(text, "#")
		token = strings.TrimSpace(token)
		comment = strings.TrimSpace(comment)
		if len(token) == 0 {
			continue
		}

		var value byte
		value, err = parseByte(token)
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: text, Err: err}
			return
		}

		if len(lines) == IMAGE_LIMIT {
			err = ErrSyntax{LineNo: lineno, Line: text, Err: ErrProgramTooLarge}
			return
		}

		lines = append(lines, Line{
			LineNo:  lineno,
			Address: len(lines),
			Value:   value,
			Comment: comment,
		})
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{Lines: lines}
	return
}

// parseByte accepts exactly eight binary digits.
func parseByte(token string) (value byte, err error) {
	if len(token) != DIGITS || strings.Trim(token, "01") != "" {
		err = ErrMalformedInstruction
		return
	}

	v64, err := strconv.ParseUint(token, 2, 8)
	if err != nil {
		err = errors.Join(ErrMalformedInstruction, err)
		return
	}

	value = byte(v64)
	return
}

// Codes yields each address and its byte.
func (prog *Program) Codes() iter.Seq2[int, byte] {
	return func(yield func(address int, value byte) bool) {
		for _, line := range prog.Lines {
			if !yield(line.Address, line.Value) {
				return
			}
		}
	}
}

// Bytes returns the memory image.
func (prog *Program) Bytes() (image []byte) {
	image = make([]byte, 0, len(prog.Lines))
	for _, value := range prog.Codes() {
		image = append(image, value)
	}
	return
}

// Debug returns the line holding address.
func (prog *Program) Debug(address int) (line Line, ok bool) {
	for _, line = range prog.Lines {
		if line.Address == address {
			ok = true
			return
		}
	}

	line = Line{}
	return
}

// WriteTo writes the image in text form, one byte per line.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	for _, line := range prog.Lines {
		var count int
		if len(line.Comment) == 0 {
			count, err = fmt.Fprintf(bw, "%08b\n", line.Value)
		} else {
			count, err = fmt.Fprintf(bw, "%08b # %v\n", line.Value, line.Comment)
		}
		n += int64(count)
		if err != nil {
			return
		}
	}

	err = bw.Flush()
	return
}
