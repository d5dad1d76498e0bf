package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document of type T given with --data, read from
// the file named by --file, or piped on stdin.
type FileReader[T any] struct {
	fileFlagValue string
	dataFlagValue string

	// Optional makes Read return the zero T when no input is given instead
	// of failing.
	Optional bool

	input io.Reader
}

// Flags returns the --file and --data flags.
func (fr *FileReader[T]) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "path to JSON file (reads from stdin if neither --file nor --data is given)",
			Destination: &fr.fileFlagValue,
		},
		&cli.StringFlag{
			Name:        "data",
			Aliases:     []string{"d"},
			Usage:       "inline JSON document",
			Destination: &fr.dataFlagValue,
		},
	}
}

// SetInput replaces stdin as the fallback source.
func (fr *FileReader[T]) SetInput(r io.Reader) {
	fr.input = r
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.fileFlagValue != "" && fr.dataFlagValue != "" {
		return input, fmt.Errorf("--file and --data are mutually exclusive")
	}

	var reader io.Reader
	switch {
	case fr.dataFlagValue != "":
		reader = strings.NewReader(fr.dataFlagValue)
	case fr.fileFlagValue != "":
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case fr.input != nil:
		reader = fr.input
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			if fr.Optional {
				return input, nil
			}
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f, -d or pipe JSON input")
		}
		reader = os.Stdin
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return input, fmt.Errorf("read input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if fr.Optional {
			return input, nil
		}
		return input, fmt.Errorf("decode JSON: %w", io.ErrUnexpectedEOF)
	}

	if err := json.Unmarshal(data, &input); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return input, fmt.Errorf("decode JSON at offset %d: %w", syntax.Offset, err)
		}
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
