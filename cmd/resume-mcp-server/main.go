package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/resumemcp"
	"portfolio/internal/tools"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	log.Printf("🚀 Starting Resume MCP Server")

	cfg := config.New()
	store, err := content.LoadConfigured(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to load content: %v", err)
	}
	log.Printf("📚 Loaded %d jobs and %d education records", len(store.Jobs()), len(store.Educations()))

	server := resumemcp.NewServer(store)
	log.Printf("📋 Registered MCP tools: %s, %s, %s, %s", tools.NameGetJobsBySkill, tools.NameGetAllJobs, tools.NameGetAllEducation, tools.NameSearchExperience)
	log.Printf("🔗 Starting Resume MCP server on stdin/stdout...")

	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		log.Fatalf("❌ Resume MCP Server failed: %v", err)
	}
}
