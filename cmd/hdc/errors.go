package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rgonek/html-docusaurus-converter/extract"
)

const (
	exitInternal     = 1
	exitInvalidInput = 2
	exitCheckFailed  = 3
)

var (
	errInvalidInput = errors.New("invalid input")
	errCheckFailed  = errors.New("markdown check failed")
)

func errorExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInvalidInput), errors.Is(err, extract.ErrInvalidURL):
		return exitInvalidInput
	case errors.Is(err, errCheckFailed):
		return exitCheckFailed
	default:
		return exitInternal
	}
}

func printError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
