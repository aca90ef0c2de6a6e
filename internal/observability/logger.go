package observability

import "github.com/rs/zerolog"

// NodeLogger tags base with the application and node identity.
func NodeLogger(base zerolog.Logger, app, node string) zerolog.Logger {
	return base.With().Str("app", app).Str("node", node).Logger()
}
