package resumemcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"portfolio/internal/tools"
)

const DefaultServerPath = "./bin/resume-mcp-server"

var ErrNotConnected = errors.New("resume MCP session not connected")

// Client calls the résumé tools on an MCP server.
type Client struct {
	client  *mcp.Client
	session *mcp.ClientSession
}

func NewClient() *Client {
	return &Client{
		client: mcp.NewClient(&mcp.Implementation{
			Name:    "portfolio-resume-chat",
			Version: ServerVersion,
		}, nil),
	}
}

func (c *Client) Connect(ctx context.Context, transport mcp.Transport) error {
	session, err := c.client.Connect(ctx, transport)
	if err != nil {
		return fmt.Errorf("failed to connect to resume MCP server: %w", err)
	}
	c.session = session
	return nil
}

// ConnectCommand starts the server binary at serverPath and talks to it
// over stdio. An empty path uses RESUME_MCP_SERVER_PATH or DefaultServerPath.
func (c *Client) ConnectCommand(ctx context.Context, serverPath string) error {
	if serverPath == "" {
		serverPath = os.Getenv("RESUME_MCP_SERVER_PATH")
	}
	if serverPath == "" {
		serverPath = DefaultServerPath
	}
	if _, err := os.Stat(serverPath); err != nil {
		return fmt.Errorf("resume MCP server binary not found at %s: %w", serverPath, err)
	}

	log.Printf("🔗 Connecting to resume MCP server at %s", serverPath)
	cmd := exec.CommandContext(ctx, serverPath)
	cmd.Env = os.Environ()
	return c.Connect(ctx, mcp.NewCommandTransport(cmd))
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) JobsBySkill(ctx context.Context, skill string) ([]tools.JobView, error) {
	var out []tools.JobView
	err := c.call(ctx, tools.NameGetJobsBySkill, map[string]any{"skill": skill}, &out)
	return out, err
}

func (c *Client) AllJobs(ctx context.Context) ([]tools.JobView, error) {
	var out []tools.JobView
	err := c.call(ctx, tools.NameGetAllJobs, map[string]any{}, &out)
	return out, err
}

func (c *Client) AllEducation(ctx context.Context) ([]tools.EducationView, error) {
	var out []tools.EducationView
	err := c.call(ctx, tools.NameGetAllEducation, map[string]any{}, &out)
	return out, err
}

func (c *Client) SearchExperience(ctx context.Context, query string) ([]tools.SearchResult, error) {
	var out []tools.SearchResult
	err := c.call(ctx, tools.NameSearchExperience, map[string]any{"query": query}, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, name string, args map[string]any, out any) error {
	if c.session == nil {
		return ErrNotConnected
	}
	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return fmt.Errorf("call %s: %w", name, err)
	}

	var text strings.Builder
	for _, content := range result.Content {
		if textContent, ok := content.(*mcp.TextContent); ok {
			text.WriteString(textContent.Text)
		}
	}
	if result.IsError {
		return fmt.Errorf("%s returned error: %s", name, text.String())
	}
	if err := json.Unmarshal([]byte(text.String()), out); err != nil {
		return fmt.Errorf("decode %s result: %w", name, err)
	}
	return nil
}
