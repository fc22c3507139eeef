// Package tools implements the read-only résumé queries the chat model can
// call. Every function is pure over the content store and never mutates it.
package tools

import (
	"strings"

	"portfolio/internal/content"
)

// Field labels reported in SearchResult.MatchedIn, in check order.
const (
	MatchedJobTitle    = "job title"
	MatchedCompany     = "company"
	MatchedSummary     = "summary"
	MatchedDescription = "description"
)

// JobView is the public projection of a work record.
type JobView struct {
	JobTitle  string   `json:"jobTitle"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	Content   string   `json:"content"`
}

// EducationView is the public projection of an education record.
type EducationView struct {
	School    string   `json:"school"`
	Summary   string   `json:"summary"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Tags      []string `json:"tags"`
	Content   string   `json:"content"`
}

// SearchResult is a job matched by SearchExperience.
type SearchResult struct {
	JobTitle  string   `json:"jobTitle"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	MatchedIn []string `json:"matchedIn"`
}

// Source is the read side of the content store.
type Source interface {
	Jobs() []content.Job
	Educations() []content.Education
}

func jobView(j content.Job) JobView {
	return JobView{
		JobTitle:  j.Title,
		Company:   j.Company,
		Location:  j.Location,
		StartDate: j.StartDate,
		EndDate:   j.EndDate,
		Summary:   j.Summary,
		Tags:      j.Tags,
		Content:   j.Content,
	}
}

// ListAllJobs returns every job in source order.
func ListAllJobs(src Source) []JobView {
	jobs := src.Jobs()
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobView(j))
	}
	return out
}

// ListAllEducation returns every education entry in source order.
func ListAllEducation(src Source) []EducationView {
	eds := src.Educations()
	out := make([]EducationView, 0, len(eds))
	for _, e := range eds {
		out = append(out, EducationView{
			School:    e.School,
			Summary:   e.Summary,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Tags:      e.Tags,
			Content:   e.Content,
		})
	}
	return out
}

// FindJobsBySkill returns the jobs having at least one tag that contains
// skill, case-insensitively. An empty skill matches nothing.
func FindJobsBySkill(src Source, skill string) []JobView {
	out := []JobView{}
	needle := strings.ToLower(skill)
	if needle == "" {
		return out
	}
	for _, j := range src.Jobs() {
		for _, tag := range j.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				out = append(out, jobView(j))
				break
			}
		}
	}
	return out
}

// SearchExperience matches query against the title, company, summary and
// body of every job. Only jobs with at least one matching field are
// returned. An empty query is a substring of every field, so it matches
// every job on all four fields.
func SearchExperience(src Source, query string) []SearchResult {
	out := []SearchResult{}
	needle := strings.ToLower(query)
	for _, j := range src.Jobs() {
		var matched []string
		fields := [...]struct{ label, value string }{
			{MatchedJobTitle, j.Title},
			{MatchedCompany, j.Company},
			{MatchedSummary, j.Summary},
			{MatchedDescription, j.Content},
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f.value), needle) {
				matched = append(matched, f.label)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out = append(out, SearchResult{
			JobTitle:  j.Title,
			Company:   j.Company,
			Location:  j.Location,
			StartDate: j.StartDate,
			EndDate:   j.EndDate,
			Summary:   j.Summary,
			Tags:      j.Tags,
			MatchedIn: matched,
		})
	}
	return out
}
