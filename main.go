// Package main is the entry point for the zentaoctl CLI.
package main

import (
	"zentaoctl/cli/cmd"
)

func main() {
	cmd.Execute()
}
