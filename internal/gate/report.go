package gate

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/rule"
	"gopkg.in/yaml.v3"
)

// Entry is the caller-facing form of one message.
type Entry struct {
	Text     string         `yaml:"text"`
	Subjects []string       `yaml:"subjects,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// Report is the outcome of validating one entity under a policy. Messages
// holds only the severities at or above the policy threshold; Counts covers
// the whole Result.
type Report struct {
	Entity   string
	Variant  entity.Variant
	Task     rule.Task
	Policy   Policy
	Passed   bool
	Counts   map[result.Severity]int
	Messages map[result.Severity][]Entry
}

// NewReport applies policy to res.
func NewReport(node entity.Node, task rule.Task, policy Policy, res *result.Result) *Report {
	r := &Report{
		Task:     task,
		Policy:   policy,
		Counts:   make(map[result.Severity]int, 3),
		Messages: make(map[result.Severity][]Entry),
	}
	if node != nil {
		r.Entity = node.ID()
		r.Variant = node.Variant()
	}
	for _, sev := range result.Severities() {
		r.Counts[sev] = res.Count(sev)
	}

	for sev, msgs := range res.MessagesAtLeast(policy.Threshold()) {
		for _, m := range msgs {
			r.Messages[sev] = append(r.Messages[sev], Entry{
				Text:     m.Text,
				Subjects: m.SubjectIDs(),
				Params:   m.Params,
			})
		}
	}
	r.Passed = len(r.Messages) == 0
	return r
}

// Failures returns the number of messages that failed the policy.
func (r *Report) Failures() int {
	n := 0
	for _, entries := range r.Messages {
		n += len(entries)
	}
	return n
}

type yamlMessages struct {
	Error   []Entry `yaml:"ERROR,omitempty"`
	Warning []Entry `yaml:"WARNING,omitempty"`
	Info    []Entry `yaml:"INFO,omitempty"`
}

type yamlReport struct {
	Entity   string         `yaml:"entity"`
	Variant  string         `yaml:"variant"`
	Task     string         `yaml:"task"`
	Policy   string         `yaml:"policy"`
	Passed   bool           `yaml:"passed"`
	Counts   map[string]int `yaml:"counts"`
	Messages *yamlMessages  `yaml:"messages,omitempty"`
}

func (r *Report) toYAML() yamlReport {
	out := yamlReport{
		Entity:  r.Entity,
		Variant: r.Variant.String(),
		Task:    string(r.Task),
		Policy:  string(r.Policy),
		Passed:  r.Passed,
		Counts: map[string]int{
			"errors":   r.Counts[result.Error],
			"warnings": r.Counts[result.Warning],
			"infos":    r.Counts[result.Info],
		},
	}
	if !r.Passed {
		out.Messages = &yamlMessages{
			Error:   r.Messages[result.Error],
			Warning: r.Messages[result.Warning],
			Info:    r.Messages[result.Info],
		}
	}
	return out
}

// WriteYAML writes the reports as one YAML sequence.
func WriteYAML(w io.Writer, reports ...*Report) error {
	docs := make([]yamlReport, 0, len(reports))
	for _, r := range reports {
		docs = append(docs, r.toYAML())
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// WriteText writes a human-readable summary of each report.
func WriteText(w io.Writer, reports ...*Report) error {
	var b strings.Builder
	for _, r := range reports {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s %s %s (%s, %s): %d error(s), %d warning(s), %d info(s)\n",
			status, r.Variant, r.Entity, r.Task, r.Policy,
			r.Counts[result.Error], r.Counts[result.Warning], r.Counts[result.Info])

		for _, sev := range []result.Severity{result.Error, result.Warning, result.Info} {
			for _, e := range r.Messages[sev] {
				fmt.Fprintf(&b, "  %s: %s", sev, e.Text)
				if len(e.Subjects) > 0 {
					fmt.Fprintf(&b, " [%s]", strings.Join(e.Subjects, ", "))
				}
				b.WriteString("\n")
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
