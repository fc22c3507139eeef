// Package resumemcp serves the résumé query tools over the Model Context
// Protocol and provides a client for them.
package resumemcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"portfolio/internal/tools"
)

const (
	ServerName    = "portfolio-resume-mcp"
	ServerVersion = "1.0.0"
)

type handlers struct {
	src tools.Source
}

// NewServer registers the four query tools on a new MCP server. Tool
// descriptions are the ones offered to the chat model.
func NewServer(src tools.Source) *mcp.Server {
	h := &handlers{src: src}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	descriptions := make(map[string]string)
	for _, d := range tools.NewRegistry(src).Definitions() {
		descriptions[d.Name] = d.Description
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.NameGetJobsBySkill,
		Description: descriptions[tools.NameGetJobsBySkill],
	}, h.getJobsBySkill)

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.NameGetAllJobs,
		Description: descriptions[tools.NameGetAllJobs],
	}, h.getAllJobs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.NameGetAllEducation,
		Description: descriptions[tools.NameGetAllEducation],
	}, h.getAllEducation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.NameSearchExperience,
		Description: descriptions[tools.NameSearchExperience],
	}, h.searchExperience)

	return server
}

func (h *handlers) getJobsBySkill(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[tools.SkillInput]) (*mcp.CallToolResultFor[any], error) {
	log.Printf("🔍 MCP Server: jobs by skill %q", params.Arguments.Skill)
	return jsonResult(tools.FindJobsBySkill(h.src, params.Arguments.Skill))
}

func (h *handlers) getAllJobs(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[tools.NoInput]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(tools.ListAllJobs(h.src))
}

func (h *handlers) getAllEducation(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[tools.NoInput]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(tools.ListAllEducation(h.src))
}

func (h *handlers) searchExperience(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[tools.QueryInput]) (*mcp.CallToolResultFor[any], error) {
	log.Printf("🔍 MCP Server: search experience %q", params.Arguments.Query)
	return jsonResult(tools.SearchExperience(h.src, params.Arguments.Query))
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	b, err := json.Marshal(v)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Failed to encode result: %v", err)},
			},
		}, nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil
}
