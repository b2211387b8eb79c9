package main

import (
	"log"

	"github.com/thiagokokada/gitodb/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitodb: %v", err)
	}
}
