package diplomacy

// EngineConfig holds the adjudication knobs a Game is configured with.
// It is intentionally small and dependency-free: callers that load
// configuration from the environment (see internal/engineconfig) build
// one of these from whatever source they like and pass it in.
type EngineConfig struct {
	// ExceptionOnConvoyParadox makes ResolveOrders return a *ParadoxError
	// when a convoy's resolution depended on breaking a dependency cycle,
	// instead of silently applying the Szykman rule.
	ExceptionOnConvoyParadox bool

	// DrawOnStalemateYears, when positive, ends the game in a draw once N
	// consecutive processed adjustment phases each leave supply-center
	// ownership as it was at the previous one. A winter adjustment that is
	// skipped because no power has a build or disband is not counted. -1
	// disables the check.
	DrawOnStalemateYears int
}

// DefaultEngineConfig returns the engine's default adjudication settings:
// the Szykman rule resolves convoy paradoxes silently, and stalemate
// draws are disabled.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		ExceptionOnConvoyParadox: false,
		DrawOnStalemateYears:     -1,
	}
}
