// Package main is the entry point for the simpleedit CLI.
package main

import "simpleedit.dev/pkg/simpleedit/cmd"

func main() {
	cmd.Execute()
}
