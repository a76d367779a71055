package config

import (
	"time"
)

var (
	Network      string
	Node         string
	LogLevel     string
	EnvFile      string
	MetricsAddr  string
	PollInterval time.Duration
)

var (
	GasPrice       float64
	TipGas         float64
	ExtraGasPrice  float64
	ExtraTipGas    float64
	GasLimit       uint64
	ExtraGasLimit  uint64
	From           string
	ForceLegacy    bool
	YesToAllPrompt bool

	Asset       string
	AutoApprove bool

	// Simulate runs every command against an in-process vault instead of
	// the configured nodes.
	Simulate      bool
	WatchInterval time.Duration
)
