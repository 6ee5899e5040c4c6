package rule

import (
	"fmt"
	"strings"
)

// Task names the purpose of a rule run. The set is open: modules may declare
// tasks of their own next to the built-in ones.
type Task string

// TaskValidate is the task run by the validation gate and the CLI.
const TaskValidate Task = "VALIDATE"

// ParseTask normalises s into a Task.
func ParseTask(s string) (Task, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", fmt.Errorf("task name must not be empty")
	}
	if strings.ContainsAny(t, " \t\n") {
		return "", fmt.Errorf("task name '%s' must not contain whitespace", s)
	}
	return Task(t), nil
}

func (t Task) String() string {
	return string(t)
}
