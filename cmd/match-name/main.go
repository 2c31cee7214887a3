// Command match-name matches a person by name and prints the candidates as
// returned by the service.
//
// Usage:
//
//	OS_API_KEY=... go run ./cmd/match-name
//
// See internal/config for the other OS_ settings.
package main

import (
	"os"

	"github.com/okian/osmatch/internal/app"
	"github.com/okian/osmatch/internal/examples"
)

func main() {
	os.Exit(app.Main(examples.NameMatchName))
}
