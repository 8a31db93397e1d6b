package parser

import (
	"log"
)

// ParserBuilderOption is a functional option for configuring a Parser via NewParser.
type ParserBuilderOption func(*parserImpl)

// WithLogger is an option builder that sets the logger for parse failures.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ParserBuilderOption: a function that applies the logger option to a parserImpl
func WithLogger(logger *log.Logger) ParserBuilderOption {
	return func(p *parserImpl) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHandler is an option builder that installs a handler for a parse key.
//
// Parameters:
//   - key: the parse key
//   - h: the handler
//
// Returns:
//   - ParserBuilderOption: a function that applies the handler option to a parserImpl
func WithHandler(key string, h Handler) ParserBuilderOption {
	return func(p *parserImpl) {
		p.handlers[key] = h
	}
}
