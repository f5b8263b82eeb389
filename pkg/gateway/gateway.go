// Package gateway provides the public API for embedding the roll-call vote
// gateway in another program.
package gateway

import (
	"github.com/tjfontaine/rollcall-gateway/internal/runtime"
)

// Gateway serves the vote API. See internal/runtime.Gateway.
type Gateway = runtime.Gateway

// Option is a functional option for configuring a Gateway.
type Option = runtime.Option

// New creates a Gateway. Example:
//
//	gw, err := gateway.New(
//	    gateway.WithFileConfig("config.yaml"),
//	    gateway.WithLogger(logger),
//	)
var New = runtime.New

var (
	WithFileConfig = runtime.WithFileConfig
	WithConfig     = runtime.WithConfig
	WithLogger     = runtime.WithLogger
	WithHTTPClient = runtime.WithHTTPClient
	WithLevelVar   = runtime.WithLevelVar
)
