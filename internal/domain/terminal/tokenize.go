package terminal

import (
	"errors"
	"fmt"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// token is one word of a command line. Only unquoted ">" and ">>" are
// operators.
type token struct {
	text     string
	operator bool
}

// redirect is an output redirection parsed from a command line
type redirect struct {
	op     string
	target string
}

// tokenize splits a command line on whitespace. Single and double quotes
// group words; a backslash escapes the next character outside single
// quotes. Redirection operators are split into their own tokens.
func tokenize(line string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	flush := func() {
		if inWord {
			tokens = append(tokens, token{text: current.String()})
			current.Reset()
			inWord = false
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == '>':
			flush()
			if i+1 < len(runes) && runes[i+1] == '>' {
				tokens = append(tokens, token{text: ">>", operator: true})
				i++
			} else {
				tokens = append(tokens, token{text: ">", operator: true})
			}
		case r == ' ' || r == '\t':
			flush()
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	flush()
	return tokens, nil
}

func words(tokens []token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.text
	}
	return out
}

// splitRedirect cuts a trailing "> file" or ">> file" off the arguments.
// The operator must be followed by exactly one word.
func splitRedirect(tokens []token) ([]string, *redirect, error) {
	for i, t := range tokens {
		if !t.operator {
			continue
		}
		if len(tokens) != i+2 || tokens[i+1].operator {
			return nil, nil, fmt.Errorf("syntax error: expected one file after %s", t.text)
		}
		return words(tokens[:i]), &redirect{op: t.text, target: tokens[i+1].text}, nil
	}
	return words(tokens), nil, nil
}

// splitFlags separates leading single-dash flags from operands. "--" ends
// flag parsing.
func splitFlags(args []string) (flags map[rune]bool, operands []string) {
	flags = make(map[rune]bool)
	for i, arg := range args {
		if arg == "--" {
			return flags, args[i+1:]
		}
		if len(arg) < 2 || arg[0] != '-' {
			return flags, args[i:]
		}
		for _, r := range arg[1:] {
			flags[r] = true
		}
	}
	return flags, nil
}
