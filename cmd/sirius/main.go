// Command sirius resolves and checks declarative page catalogues.
package main

import "github.com/devicelab-dev/sirius/pkg/cli"

func main() {
	cli.Execute()
}
