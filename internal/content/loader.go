package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	JobsDir      = "jobs"
	EducationDir = "education"

	dateLayout = "2006-01-02"
)

var errNoFrontMatter = errors.New("missing front-matter")

// ValidationError reports a content file that does not satisfy its schema.
type ValidationError struct {
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content %s: %v", e.File, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Load parses every markdown file under jobs/ and education/ in fsys.
// Files are visited in lexical order. A missing directory yields an empty
// collection; any malformed file fails the whole load.
func Load(fsys fs.FS) (*Store, error) {
	var jobs []Job
	err := walkMarkdown(fsys, JobsDir, func(p string, meta Meta, data []byte) error {
		j, err := parseJob(data)
		if err != nil {
			return &ValidationError{File: p, Err: err}
		}
		j.Meta = meta
		jobs = append(jobs, j)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var educations []Education
	err = walkMarkdown(fsys, EducationDir, func(p string, meta Meta, data []byte) error {
		e, err := parseEducation(data)
		if err != nil {
			return &ValidationError{File: p, Err: err}
		}
		e.Meta = meta
		educations = append(educations, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewStore(jobs, educations), nil
}

func walkMarkdown(fsys fs.FS, dir string, fn func(p string, meta Meta, data []byte) error) error {
	if _, err := fs.Stat(fsys, dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		rel := strings.TrimPrefix(p, dir+"/")
		meta := Meta{
			FilePath: rel,
			FileName: path.Base(rel),
			Path:     strings.TrimSuffix(rel, ".md"),
		}
		return fn(p, meta, data)
	})
}

func parseJob(data []byte) (Job, error) {
	var j Job
	body, err := decodeFrontMatter(data, &j)
	if err != nil {
		return Job{}, err
	}
	j.Content = body
	if err := checkRequired(
		field{"jobTitle", j.Title},
		field{"summary", j.Summary},
		field{"startDate", j.StartDate},
		field{"company", j.Company},
		field{"location", j.Location},
	); err != nil {
		return Job{}, err
	}
	if j.Tags == nil {
		return Job{}, errors.New("tags is required")
	}
	if err := checkDates(j.StartDate, j.EndDate); err != nil {
		return Job{}, err
	}
	return j, nil
}

func parseEducation(data []byte) (Education, error) {
	var e Education
	body, err := decodeFrontMatter(data, &e)
	if err != nil {
		return Education{}, err
	}
	e.Content = body
	if err := checkRequired(
		field{"school", e.School},
		field{"summary", e.Summary},
		field{"startDate", e.StartDate},
	); err != nil {
		return Education{}, err
	}
	if e.Tags == nil {
		return Education{}, errors.New("tags is required")
	}
	if err := checkDates(e.StartDate, e.EndDate); err != nil {
		return Education{}, err
	}
	return e, nil
}

// decodeFrontMatter unmarshals the YAML block delimited by "---" lines into
// out and returns the trimmed markdown body that follows it.
func decodeFrontMatter(data []byte, out any) (string, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return "", errNoFrontMatter
	}
	rest := data[len("---\n"):]
	var header []byte
	var body []byte
	switch {
	case bytes.HasPrefix(rest, []byte("---\n")) || bytes.Equal(rest, []byte("---")):
		body = bytes.TrimPrefix(rest, []byte("---"))
	default:
		idx := bytes.Index(rest, []byte("\n---\n"))
		if idx < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return "", errors.New("unterminated front-matter")
			}
			idx = len(rest) - len("\n---")
			header, body = rest[:idx], nil
		} else {
			header, body = rest[:idx], rest[idx+len("\n---\n"):]
		}
	}
	if err := yaml.Unmarshal(header, out); err != nil {
		return "", fmt.Errorf("front-matter: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

type field struct{ name, value string }

func checkRequired(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

func checkDates(start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("startDate %q: expected YYYY-MM-DD", start)
	}
	if end == "" {
		return nil
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("endDate %q: expected YYYY-MM-DD", end)
	}
	if e.Before(s) {
		return fmt.Errorf("endDate %s is before startDate %s", end, start)
	}
	return nil
}
