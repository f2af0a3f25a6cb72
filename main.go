// Package main is the entry point for the gpgen CLI.
package main

import "gpgen.dev/pkg/gpgen/cmd"

func main() {
	cmd.Execute()
}
