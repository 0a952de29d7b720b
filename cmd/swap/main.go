// Package main runs the command-line face-swap client against a CULTFACE
// server.
package main

import (
	"log"
	"os"

	swapcmd "github.com/louisbranch/cultface/internal/cmd/swap"
	"github.com/louisbranch/cultface/internal/platform/config"
)

func main() {
	log.SetPrefix("[SWAP] ")
	if err := swapcmd.Execute(os.Args[1:]); err != nil {
		config.Exitf("%v", err)
	}
}
