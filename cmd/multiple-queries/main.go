// Command multiple-queries sends a person and a company query in a single
// request using the regression-v1 algorithm, then prints id, name and match
// for each query in turn.
package main

import (
	"os"

	"github.com/okian/osmatch/internal/app"
	"github.com/okian/osmatch/internal/examples"
)

func main() {
	os.Exit(app.Main(examples.NameMultipleQueries))
}
