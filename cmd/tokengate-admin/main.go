// Command tokengate-admin is the operator CLI: it talks straight to the
// session store for inspection and cleanup.
package main

import (
	"github.com/tokengate/tokengate/cmd/cli"
)

func main() {
	cli.Execute()
}
