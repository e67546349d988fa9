// Command apiaryctl is the operator CLI: it watches the dashboard from the client
// side, issues development tokens and maintains the document store.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("apiaryctl failed")
		os.Exit(1)
	}
}
