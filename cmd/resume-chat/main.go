package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"portfolio/internal/resumemcp"
	"portfolio/internal/widget"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var endpoint, provider, model, toolsServer string
	root := &cobra.Command{
		Use:   "resume-chat",
		Short: "Chat with the portfolio assistant from a terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			w := widget.New(widget.Options{
				Endpoint:   endpoint,
				Provider:   provider,
				Model:      model,
				OnDelta:    func(d string) { fmt.Fprint(out, d) },
				OnToolCall: func(name string) { fmt.Fprintf(out, "\n🔧 %s\n", name) },
			})
			w.Open()

			s := &session{widget: w, out: out, toolsServer: toolsServer}
			defer s.close()
			return s.loop(ctx, cmd.InOrStdin())
		},
	}
	root.Flags().StringVar(&endpoint, "endpoint", getenv("RESUME_CHAT_ENDPOINT", "http://localhost:8080/api/resume-chat"), "chat endpoint URL")
	root.Flags().StringVar(&provider, "provider", "", "preferred provider for the local fallback")
	root.Flags().StringVar(&model, "model", "", "preferred model for the local fallback")
	root.Flags().StringVar(&toolsServer, "tools-server", "", "resume MCP server binary used by slash commands")
	return root
}

type session struct {
	widget      *widget.Widget
	out         io.Writer
	toolsServer string
	tools       *resumemcp.Client
}

func (s *session) loop(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, s.widget.Placeholder())
	fmt.Fprintln(s.out, "Commands: /jobs, /education, /skill <name>, /search <query>, /clear, /quit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := s.command(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "❌ %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		s.widget.SetInput(line)
		fmt.Fprint(s.out, "Assistant: ")
		err := s.widget.Send(ctx)
		fmt.Fprintln(s.out)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		default:
			var serverErr *widget.ServerError
			if errors.As(err, &serverErr) && serverErr.Message != "" {
				fmt.Fprintf(s.out, "❌ %s: %s\n", serverErr.Title, serverErr.Message)
			} else {
				fmt.Fprintf(s.out, "❌ %v\n", err)
			}
		}
	}
}

func (s *session) command(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/clear":
		if err := s.widget.Reset(); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, s.widget.Placeholder())
		return false, nil
	}

	c, err := s.toolsClient(ctx)
	if err != nil {
		return false, err
	}
	switch name {
	case "/jobs":
		jobs, err := c.AllJobs(ctx)
		if err != nil {
			return false, err
		}
		for _, j := range jobs {
			fmt.Fprintf(s.out, "• %s, %s (%s to %s)\n", j.JobTitle, j.Company, j.StartDate, orPresent(j.EndDate))
		}
	case "/education":
		edu, err := c.AllEducation(ctx)
		if err != nil {
			return false, err
		}
		for _, e := range edu {
			fmt.Fprintf(s.out, "• %s (%s to %s)\n", e.School, e.StartDate, orPresent(e.EndDate))
		}
	case "/skill":
		jobs, err := c.JobsBySkill(ctx, arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%d job(s) tagged %q\n", len(jobs), arg)
		for _, j := range jobs {
			fmt.Fprintf(s.out, "• %s, %s\n", j.JobTitle, j.Company)
		}
	case "/search":
		results, err := c.SearchExperience(ctx, arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%d match(es) for %q\n", len(results), arg)
		for _, r := range results {
			fmt.Fprintf(s.out, "• %s, %s [%s]\n", r.JobTitle, r.Company, strings.Join(r.MatchedIn, ", "))
		}
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
	return false, nil
}

// toolsClient starts the MCP server on first use.
func (s *session) toolsClient(ctx context.Context) (*resumemcp.Client, error) {
	if s.tools != nil {
		return s.tools, nil
	}
	c := resumemcp.NewClient()
	if err := c.ConnectCommand(ctx, s.toolsServer); err != nil {
		return nil, err
	}
	s.tools = c
	return c, nil
}

func (s *session) close() {
	if s.tools != nil {
		if err := s.tools.Close(); err != nil {
			log.Printf("⚠️ Failed to close MCP session: %v", err)
		}
	}
}

func orPresent(date string) string {
	if date == "" {
		return "present"
	}
	return date
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
