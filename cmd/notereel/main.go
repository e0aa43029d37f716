// Command notereel is the notereel command-line interface.
package main

import "github.com/mesh-intelligence/notereel/internal/cli"

func main() {
	cli.Execute()
}
