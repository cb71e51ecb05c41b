//go:build cli
// +build cli

package main

import (
	"shopbot.GO/cmd"
	"shopbot.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
