// Command match-name-address matches a person by alternative name spellings,
// an address and a country, printing id, name, match, score and features.
package main

import (
	"os"

	"github.com/okian/osmatch/internal/app"
	"github.com/okian/osmatch/internal/examples"
)

func main() {
	os.Exit(app.Main(examples.NameMatchNameAddress))
}
