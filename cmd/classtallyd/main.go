package main

import (
	"log"

	"github.com/classtally/classtally/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
