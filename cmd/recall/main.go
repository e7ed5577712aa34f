// Package main provides the entry point for the recall CLI.
package main

import "github.com/raphaelgruber/recall-go/internal/cli"

func main() {
	cli.Execute()
}
