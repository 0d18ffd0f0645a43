package common

// Shorthands over the mediator, auth and logging packages so handlers need a
// single import for the request plumbing.

import (
	"github.com/andrescamacho/colonysim-go/internal/application/auth"
	"github.com/andrescamacho/colonysim-go/internal/application/logging"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
)

// Mediator types
type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
	HandlerFunc    = mediator.HandlerFunc
	Middleware     = mediator.Middleware
	Mediator       = mediator.Mediator
)

// Logging types
type Logger = logging.Logger

// Mediator functions
var (
	NewMediator = mediator.NewMediator
)

// Auth functions
var (
	WithCharacterToken        = auth.WithCharacterToken
	CharacterTokenFromContext = auth.CharacterTokenFromContext
	CharacterTokenMiddleware  = auth.CharacterTokenMiddleware
)

// Logging functions
var (
	WithLogger        = logging.WithLogger
	LoggerFromContext = logging.LoggerFromContext
)
