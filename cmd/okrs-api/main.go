package main

import (
	"log"

	"github.com/arnold/okrs-api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
