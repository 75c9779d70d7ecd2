package main

import (
	"os"

	"flexJobShop/cmd/fjsp/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
