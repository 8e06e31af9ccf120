package main

import (
	"log"

	"wayfire-ipc/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
