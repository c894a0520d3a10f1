package main

import (
	"log"

	"letterhead/config"
	"letterhead/services/mcptools"
	"letterhead/services/measure"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	geometry, err := measure.GeometryFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid page geometry: %v", err)
	}

	srv := mcptools.New(measure.FromConfig(cfg), geometry, version)
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
