// Package main is the entry point for the cardex catalogue loader.
package main

import (
	"os"

	"github.com/alexwilson/cardex/cmd/cardex-loader/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
