package main

import (
	"log"

	"github.com/thiagokokada/branchview/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("branchview: %v", err)
	}
}
