package rulegraph

import (
	"fmt"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
)

// ConfigError is a defect in the rule unit declarations. It is never
// produced while processing entities.
type ConfigError struct {
	Task    rule.Task
	Variant entity.Variant
	Unit    string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Task != "" && e.Variant != entity.VariantUnknown:
		return fmt.Sprintf("rule graph for task %s and variant %s: %v", e.Task, e.Variant, e.Err)
	case e.Unit != "":
		return fmt.Sprintf("rule unit '%s': %v", e.Unit, e.Err)
	}
	return fmt.Sprintf("rule graph: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
