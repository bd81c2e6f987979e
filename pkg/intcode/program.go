package intcode

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads a comma separated program. Whitespace around values and a
// trailing newline are ignored.
func Parse(r io.Reader) ([]int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return ParseString(string(data))
}

func ParseString(src string) ([]int64, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}

	fields := strings.Split(src, ",")
	program := make([]int64, 0, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value at index %d: %w", i, err)
		}

		program = append(program, v)
	}

	return program, nil
}

// MustParse is like ParseString but panics on error. It is meant for
// programs embedded in source.
func MustParse(src string) []int64 {
	program, err := ParseString(src)
	if err != nil {
		panic(err)
	}

	return program
}

func LoadFile(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer f.Close()

	program, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return program, nil
}

func Format(program []int64) string {
	var b strings.Builder
	for i, v := range program {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}

	return b.String()
}
