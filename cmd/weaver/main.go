// Command weaver compiles and validates semantic-convention registries
// and renders them into target-language artifacts.
package main

import (
	"os"

	"github.com/build-flow-labs/weaver/internal/weavercli"
)

func main() {
	os.Exit(weavercli.Execute())
}
