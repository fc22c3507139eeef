package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"portfolio/internal/llm"
)

const (
	NameGetJobsBySkill   = "getJobsBySkill"
	NameGetAllJobs       = "getAllJobs"
	NameGetAllEducation  = "getAllEducation"
	NameSearchExperience = "searchExperience"
)

// SkillInput is the argument of getJobsBySkill.
type SkillInput struct {
	Skill string `json:"skill" mcp:"The skill or technology to search for (e.g. React, TypeScript, Leadership)"`
}

// QueryInput is the argument of searchExperience.
type QueryInput struct {
	Query string `json:"query" mcp:"The search query (e.g. senior, lead, frontend, startup)"`
}

// NoInput is the argument of the list tools.
type NoInput struct{}

// Registry exposes the résumé queries as model-callable tools.
type Registry struct {
	src Source
}

func NewRegistry(src Source) *Registry {
	return &Registry{src: src}
}

// Definitions returns the tool declarations sent to the model.
func (r *Registry) Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Name:        NameGetJobsBySkill,
			Description: "Find all jobs where the candidate used a specific technology or skill. Use this to check if the candidate has experience with particular technologies.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"skill": map[string]interface{}{
						"type":        "string",
						"description": `The skill or technology to search for (e.g., "React", "TypeScript", "Leadership")`,
					},
				},
				"required": []string{"skill"},
			},
		},
		{
			Name:        NameGetAllJobs,
			Description: "Get a complete list of all work experience with full details including job titles, companies, dates, summaries, and skills. Use this to get an overview of the candidate's entire work history.",
			Parameters:  emptySchema(),
		},
		{
			Name:        NameGetAllEducation,
			Description: "Get a complete list of all education history including schools, programs, dates, and skills learned. Use this to understand the candidate's educational background.",
			Parameters:  emptySchema(),
		},
		{
			Name:        NameSearchExperience,
			Description: "Search for jobs by keywords in the job title, company name, summary, or content. Use this to find specific types of experience or roles.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": `The search query (e.g., "senior", "lead", "frontend", "startup")`,
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Call runs the named tool with JSON-encoded arguments and returns its
// JSON-encoded output.
func (r *Registry) Call(ctx context.Context, name, args string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out any
	switch name {
	case NameGetJobsBySkill:
		var in SkillInput
		if err := decodeArgs(args, &in); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		out = FindJobsBySkill(r.src, in.Skill)
	case NameGetAllJobs:
		out = ListAllJobs(r.src)
	case NameGetAllEducation:
		out = ListAllEducation(r.src)
	case NameSearchExperience:
		var in QueryInput
		if err := decodeArgs(args, &in); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		out = SearchExperience(r.src, in.Query)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", name, err)
	}
	return string(b), nil
}

func decodeArgs(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
