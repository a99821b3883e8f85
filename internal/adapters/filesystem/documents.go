// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/secondary"
)

// DocumentLoader implements secondary.DocumentLoader for YAML files.
// A path may name a single file or a directory of *.yaml / *.yml files.
type DocumentLoader struct{}

// NewDocumentLoader creates a new YAML document loader.
func NewDocumentLoader() *DocumentLoader {
	return &DocumentLoader{}
}

type syllabusYAML struct {
	Position     string            `yaml:"position"`
	Year         string            `yaml:"year"`
	DisplayName  string            `yaml:"display_name"`
	BaseLevel    int               `yaml:"base_level"`
	Curves       map[int]curveYAML `yaml:"curves"`
	Requirements []requirementYAML `yaml:"requirements"`
	Syllabi      []syllabusYAML    `yaml:"syllabi"` // top level only
}

type curveYAML struct {
	TargetMonths   int `yaml:"target_months"`
	DeadlineMonths int `yaml:"deadline_months"`
}

type requirementYAML struct {
	Name            string   `yaml:"name"`
	DisplayName     string   `yaml:"display_name"`
	Kind            string   `yaml:"kind"`
	Level           int      `yaml:"level"`
	Prerequisites   []string `yaml:"prerequisites"`
	WaivedByDefault bool     `yaml:"waived_by_default"`
	Sequence        *int     `yaml:"sequence"`
}

type rosterDocument struct {
	Upgraders []upgraderYAML `yaml:"upgraders"`
}

type upgraderYAML struct {
	Name         string `yaml:"name"`
	DisplayName  string `yaml:"display_name"`
	Rank         string `yaml:"rank"`
	Position     string `yaml:"position"`
	SyllabusYear string `yaml:"syllabus_year"`
	TargetLevel  int    `yaml:"target_level"`
	StartDate    string `yaml:"start_date"`
	OnWaiver     bool   `yaml:"on_waiver"`
}

type sourceDocument struct {
	Name    string       `yaml:"name"`
	Records []recordYAML `yaml:"records"`
}

type recordYAML struct {
	Name       string `yaml:"name"`
	Event      string `yaml:"event"`
	Date       string `yaml:"date"`
	Instructor string `yaml:"instructor"`
	Grade      string `yaml:"grade"`
	Status     string `yaml:"status"`
}

// LoadSyllabi reads every syllabus in path. A file may hold a single
// syllabus, a "syllabi:" list, or several YAML documents.
func (l *DocumentLoader) LoadSyllabi(ctx context.Context, path string) ([]*secondary.SyllabusRecord, error) {
	files, err := expand(path)
	if err != nil {
		return nil, err
	}

	var out []*secondary.SyllabusRecord
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := readFile(file)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var doc syllabusYAML
			err := dec.Decode(&doc)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("syllabus: decode %s: %w", file, err)
			}
			docs := doc.Syllabi
			if doc.Position != "" || len(doc.Requirements) > 0 {
				docs = append([]syllabusYAML{doc}, docs...)
			}
			for _, s := range docs {
				rec, err := s.record()
				if err != nil {
					return nil, fmt.Errorf("syllabus: %s: %w", file, err)
				}
				out = append(out, rec)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("syllabus: no syllabi found in %s", path)
	}
	return out, nil
}

func (s syllabusYAML) record() (*secondary.SyllabusRecord, error) {
	position := models.RequirementKey(s.Position)
	year := strings.TrimSpace(s.Year)
	if position == "" || year == "" {
		return nil, fmt.Errorf("position and year are required")
	}

	rec := &secondary.SyllabusRecord{
		ID:          models.SyllabusKey(position, year),
		Position:    position,
		Year:        year,
		DisplayName: strings.TrimSpace(s.DisplayName),
		BaseLevel:   s.BaseLevel,
	}
	for _, r := range s.Requirements {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("%s %s: requirement without a name", position, year)
		}
		rec.Requirements = append(rec.Requirements, secondary.RequirementRecord{
			Name:            name,
			DisplayName:     strings.TrimSpace(r.DisplayName),
			Kind:            strings.TrimSpace(r.Kind),
			Level:           r.Level,
			Prerequisites:   trimAll(r.Prerequisites),
			WaivedByDefault: r.WaivedByDefault,
			Sequence:        r.Sequence,
		})
	}

	levels := make([]int, 0, len(s.Curves))
	for level := range s.Curves {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		c := s.Curves[level]
		rec.Curves = append(rec.Curves, secondary.CurveRecord{
			Level:          level,
			TargetMonths:   c.TargetMonths,
			DeadlineMonths: c.DeadlineMonths,
		})
	}
	return rec, nil
}

// LoadRoster reads roster entries. IDs are left for the caller to assign.
func (l *DocumentLoader) LoadRoster(ctx context.Context, path string) ([]*secondary.UpgraderRecord, error) {
	files, err := expand(path)
	if err != nil {
		return nil, err
	}

	var out []*secondary.UpgraderRecord
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := readFile(file)
		if err != nil {
			return nil, err
		}
		var doc rosterDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("roster: decode %s: %w", file, err)
		}
		for i, u := range doc.Upgraders {
			if strings.TrimSpace(u.Name) == "" {
				return nil, fmt.Errorf("roster: %s: entry %d has no name", file, i+1)
			}
			start := strings.TrimSpace(u.StartDate)
			if _, err := models.ParseDate(start); err != nil {
				return nil, fmt.Errorf("roster: %s: %s: %w", file, u.Name, err)
			}
			out = append(out, &secondary.UpgraderRecord{
				Name:         strings.TrimSpace(u.Name),
				DisplayName:  strings.TrimSpace(u.DisplayName),
				Rank:         strings.TrimSpace(u.Rank),
				Position:     models.RequirementKey(u.Position),
				SyllabusYear: strings.TrimSpace(u.SyllabusYear),
				TargetLevel:  u.TargetLevel,
				StartDate:    start,
				OnWaiver:     u.OnWaiver,
			})
		}
	}
	return out, nil
}

// LoadCompletionSource reads one completion source file. Records are grouped
// by source name in order of first appearance.
func (l *DocumentLoader) LoadCompletionSource(ctx context.Context, path string) (*secondary.CompletionSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var doc sourceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}

	src := &secondary.CompletionSource{
		Name: strings.TrimSpace(doc.Name),
		Path: filepath.Clean(path),
	}
	if src.Name == "" {
		src.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	index := make(map[string]int)
	for i, r := range doc.Records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("source: %s: record %d has no name", path, i+1)
		}
		date := strings.TrimSpace(r.Date)
		if _, err := models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("source: %s: record %d: %w", path, i+1, err)
		}

		pos, ok := index[name]
		if !ok {
			pos = len(src.Entries)
			index[name] = pos
			src.Entries = append(src.Entries, secondary.SourceEntry{Name: name})
		}
		src.Entries[pos].Completions = append(src.Entries[pos].Completions, &secondary.CompletionRecord{
			Event:       strings.TrimSpace(r.Event),
			CompletedOn: date,
			Instructor:  strings.TrimSpace(r.Instructor),
			Grade:       strings.TrimSpace(r.Grade),
			Status:      strings.TrimSpace(r.Status),
		})
	}
	return src, nil
}

// expand returns path itself, or the sorted YAML files of a directory.
func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{filepath.Clean(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files in %s", path)
	}
	return files, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return data, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ensure DocumentLoader implements the interface
var _ secondary.DocumentLoader = (*DocumentLoader)(nil)
