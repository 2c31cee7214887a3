// Command match-name-birth-date matches a person by name and birth date.
package main

import (
	"os"

	"github.com/okian/osmatch/internal/app"
	"github.com/okian/osmatch/internal/examples"
)

func main() {
	os.Exit(app.Main(examples.NameMatchNameBirthDate))
}
