// Package analytics aggregates recorded chat runs into usage reports.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"portfolio/internal/storage"
)

// DailyStats summarises the chat runs of one period.
type DailyStats struct {
	Date              string                   `json:"date"`
	TotalRuns         int                      `json:"total_runs"`
	ByOutcome         map[string]int           `json:"by_outcome"`
	MaxIterationRuns  int                      `json:"max_iteration_runs"`
	ToolCallsTotal    int                      `json:"tool_calls_total"`
	ToolCallsByName   map[string]int           `json:"tool_calls_by_name"`
	ProviderStats     map[string]ProviderStats `json:"provider_stats"`
	AverageDurationMS int64                    `json:"average_duration_ms"`
}

// ProviderStats holds the share of one provider.
type ProviderStats struct {
	Provider         string `json:"provider"`
	Runs             int    `json:"runs"`
	Fallback         int    `json:"fallback"`
	Errors           int    `json:"errors"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// AnalyzeDailyLogs aggregates the events of the calendar day containing
// targetDate, in targetDate's location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	stats := AnalyzeWindow(events, startOfDay, startOfDay.Add(24*time.Hour))
	stats.Date = startOfDay.Format("2006-01-02")
	return stats
}

// AnalyzeWindow aggregates events with from <= timestamp < to.
func AnalyzeWindow(events []storage.Event, from, to time.Time) *DailyStats {
	stats := &DailyStats{
		Date:            from.Format("2006-01-02 15:04") + " to " + to.Format("2006-01-02 15:04"),
		ByOutcome:       make(map[string]int),
		ToolCallsByName: make(map[string]int),
		ProviderStats:   make(map[string]ProviderStats),
	}

	var totalDuration int64
	for _, event := range events {
		if event.Timestamp.Before(from) || !event.Timestamp.Before(to) {
			continue
		}
		stats.TotalRuns++
		stats.ByOutcome[event.Outcome]++
		if event.FinishReason == "max_iterations" {
			stats.MaxIterationRuns++
		}
		totalDuration += event.DurationMS

		for _, name := range event.ToolCalls {
			stats.ToolCallsTotal++
			stats.ToolCallsByName[name]++
		}

		ps, exists := stats.ProviderStats[event.Provider]
		if !exists {
			ps = ProviderStats{Provider: event.Provider}
		}
		ps.Runs++
		if event.Fallback {
			ps.Fallback++
		}
		if event.Outcome == "errored" {
			ps.Errors++
		}
		ps.PromptTokens += event.PromptTokens
		ps.CompletionTokens += event.CompletionTokens
		stats.ProviderStats[event.Provider] = ps
	}

	if stats.TotalRuns > 0 {
		stats.AverageDurationMS = totalDuration / int64(stats.TotalRuns)
	}
	return stats
}

// GenerateReportSummary renders the stats as plain text.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Résumé chat usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Chat runs: %d\n", ds.TotalRuns)
	fmt.Fprintf(&b, "- Average duration: %dms\n", ds.AverageDurationMS)
	fmt.Fprintf(&b, "- Stopped at iteration cap: %d\n", ds.MaxIterationRuns)
	fmt.Fprintf(&b, "- Tool calls: %d\n", ds.ToolCallsTotal)

	if len(ds.ByOutcome) > 0 {
		b.WriteString("\nOutcomes:\n")
		for _, k := range sortedKeys(ds.ByOutcome) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.ByOutcome[k])
		}
	}

	if len(ds.ToolCallsByName) > 0 {
		b.WriteString("\nTools:\n")
		for _, k := range sortedKeys(ds.ToolCallsByName) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.ToolCallsByName[k])
		}
	}

	if len(ds.ProviderStats) > 0 {
		b.WriteString("\nProviders:\n")
		names := make([]string, 0, len(ds.ProviderStats))
		for k := range ds.ProviderStats {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			ps := ds.ProviderStats[k]
			fmt.Fprintf(&b, "- %s: %d runs", k, ps.Runs)
			if ps.Fallback > 0 {
				fmt.Fprintf(&b, ", %d via fallback", ps.Fallback)
			}
			if ps.Errors > 0 {
				fmt.Fprintf(&b, ", %d errors", ps.Errors)
			}
			if tokens := ps.PromptTokens + ps.CompletionTokens; tokens > 0 {
				fmt.Fprintf(&b, ", %d tokens", tokens)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
