package main

import (
	"log"

	"github.com/fleetgrid/supplyline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
