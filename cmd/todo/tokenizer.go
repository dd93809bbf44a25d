package main

import (
	"errors"
	"strings"
	"unicode"
)

// errUnclosedQuote is returned when an input line ends inside a quoted
// argument.
var errUnclosedQuote = errors.New("unclosed quote")

// tokenize splits a command line into arguments. Arguments are separated by
// whitespace; double or single quotes group words into one argument and may
// contain the other quote character literally.
func tokenize(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, errUnclosedQuote
	}
	if inArg {
		args = append(args, current.String())
	}

	return args, nil
}
