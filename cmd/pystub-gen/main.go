// Command pystub-gen generates Python .pyi stub files and API
// documentation from the metadata records of a native extension module.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/example/pystub-gen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
