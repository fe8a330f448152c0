package main

import (
	"os"

	"github.com/bidwatch-kr/backend/cmd/bidwatch/commands"
)

// main is the entry point for the bidwatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/bidwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
