// Command socialdb serves the socialdb store over HTTP.
package main

import "github.com/mesh-intelligence/socialdb/internal/cli"

func main() {
	cli.Execute()
}
