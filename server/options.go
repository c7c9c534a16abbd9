package server

import (
	"log/slog"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithEngine specifies the extraction engine for the extract endpoint
func WithEngine(e *extract.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}
