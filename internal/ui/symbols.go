package ui

// Unicode symbols for per-rule status indicators.
const (
	SymbolSuccess  = "✓" // Tunnel established
	SymbolFail     = "✗" // Tunnel stopped with an error
	SymbolPending  = "○" // Not yet launched
	SymbolProgress = "◐" // Launching or waiting to reconnect
	SymbolStopped  = "⊘" // Stopped by cancellation
)
