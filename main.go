package main

import (
	"log"

	"garaadka-laundry/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
