package content

import "slices"

// Meta describes the markdown file a record was parsed from.
type Meta struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	Path     string `json:"path"`
}

// Job is a single work-history entry.
type Job struct {
	Title     string   `yaml:"jobTitle"`
	Summary   string   `yaml:"summary"`
	StartDate string   `yaml:"startDate"`
	EndDate   string   `yaml:"endDate"`
	Company   string   `yaml:"company"`
	Location  string   `yaml:"location"`
	Tags      []string `yaml:"tags"`
	Content   string   `yaml:"-"`
	Meta      Meta     `yaml:"-"`
}

// Education is a single education entry.
type Education struct {
	School    string   `yaml:"school"`
	Summary   string   `yaml:"summary"`
	StartDate string   `yaml:"startDate"`
	EndDate   string   `yaml:"endDate"`
	Tags      []string `yaml:"tags"`
	Content   string   `yaml:"-"`
	Meta      Meta     `yaml:"-"`
}

// Store holds the parsed records. It is never written after construction,
// so it is safe for any number of concurrent readers.
type Store struct {
	jobs       []Job
	educations []Education
}

// NewStore copies the given records into a new Store.
func NewStore(jobs []Job, educations []Education) *Store {
	s := &Store{
		jobs:       make([]Job, len(jobs)),
		educations: make([]Education, len(educations)),
	}
	for i, j := range jobs {
		j.Tags = slices.Clone(j.Tags)
		s.jobs[i] = j
	}
	for i, e := range educations {
		e.Tags = slices.Clone(e.Tags)
		s.educations[i] = e
	}
	return s
}

// Jobs returns the work records in source order. The result is a copy.
func (s *Store) Jobs() []Job {
	out := make([]Job, len(s.jobs))
	for i, j := range s.jobs {
		j.Tags = slices.Clone(j.Tags)
		out[i] = j
	}
	return out
}

// Educations returns the education records in source order. The result is a copy.
func (s *Store) Educations() []Education {
	out := make([]Education, len(s.educations))
	for i, e := range s.educations {
		e.Tags = slices.Clone(e.Tags)
		out[i] = e
	}
	return out
}
