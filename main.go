// Package main is the entry point for the lolwrapped CLI tool, which fetches
// League of Legends match history and renders a year-in-review summary.
package main

import "github.com/pable/lol-wrapped/cmd"

func main() {
	cmd.Execute()
}
