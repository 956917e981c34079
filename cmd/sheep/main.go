// Package main is the entrypoint for sheep, the sleep-habit engine.
package main

import "github.com/sleepsheep/sheep/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
