package commands

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingParam      = errors.New("missing required param")
	ErrUnknownParam      = errors.New("unknown param")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnterminatedQuote = errors.New("unterminated quote")
)

// Params holds the named parameters of one command line. The main parameter
// is stored under its declared name. Required params are always present once
// parseParams returned, optional ones read as "" when absent.
type Params map[string]string

// Param declares a parameter accepted by a command.
type Param struct {
	Name        string
	Description string
	Required    bool
	// Main params may be given without name, right after the command.
	Main bool
}

func (p Params) Get(name string) (string, bool) {
	value, ok := p[name]
	return value, ok
}


// tokenize splits a command line on blanks. Double quotes group blanks into a
// token, and a backslash inside quotes escapes the next character, so
// msg="say \"hi\"" yields msg=say "hi".
func tokenize(line string) ([]string, error) {
	tokens := []string{}
	current := strings.Builder{}
	inToken := false
	inQuotes := false
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case inQuotes && r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			inToken = true
		case !inQuotes && (r == ' ' || r == '\t'):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if inQuotes || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// parseParams matches the arguments of a command line against the params
// the command declares.
func parseParams(declared []Param, args []string) (Params, error) {
	params := Params{}

	known := map[string]Param{}
	var main *Param
	for i, p := range declared {
		known[p.Name] = p
		if p.Main && main == nil {
			main = &declared[i]
		}
	}

	for i, arg := range args {
		name, value, isNamed := strings.Cut(arg, "=")
		if !isNamed {
			if i != 0 || main == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParam, arg)
			}
			params[main.Name] = arg
			continue
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
		params[name] = value
	}

	for _, p := range declared {
		if _, ok := params[p.Name]; p.Required && !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, p.Name)
		}
	}

	return params, nil
}
