package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Manifests and entity documents share one schema, so a file may mix
// both.
type fileRoot struct {
	Rules      []*ruleBlock          `hcl:"rule,block"`
	Attributes []*attributeBlock     `hcl:"attribute,block"`
	Mappings   []*mappingBlock       `hcl:"attribute_mapping,block"`
	Atomics    []*atomicTypeBlock    `hcl:"atomic_data_type,block"`
	Profiles   []*typeProfileBlock   `hcl:"type_profile,block"`
	Operations []*operationBlock     `hcl:"operation,block"`
	Steps      []*operationStepBlock `hcl:"operation_step,block"`
	Interfaces []*interfaceBlock     `hcl:"technology_interface,block"`
	Remain     hcl.Body              `hcl:",remain"`
}

type ruleBlock struct {
	Name          string    `hcl:"name,label"`
	Handler       string    `hcl:"handler"`
	Description   string    `hcl:"description,optional"`
	AppliesTo     []string  `hcl:"applies_to"`
	Tasks         []string  `hcl:"tasks,optional"`
	DependsOn     []string  `hcl:"depends_on,optional"`
	ExecuteBefore []string  `hcl:"execute_before,optional"`
	DeclRange     hcl.Range `hcl:",def_range"`
}

type attributeBlock struct {
	ID           string         `hcl:"id,label"`
	Name         string         `hcl:"name,optional"`
	DataType     string         `hcl:"data_type,optional"`
	LowerBound   int            `hcl:"lower_bound,optional"`
	UpperBound   hcl.Expression `hcl:"upper_bound,optional"`
	InheritsFrom string         `hcl:"inherits_from,optional"`
	Override     string         `hcl:"override,optional"`
	DeclRange    hcl.Range      `hcl:",def_range"`
}

type mappingBlock struct {
	ID        string    `hcl:"id,label"`
	Name      string    `hcl:"name,optional"`
	Source    string    `hcl:"source"`
	Target    string    `hcl:"target"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type atomicTypeBlock struct {
	ID              string         `hcl:"id,label"`
	Name            string         `hcl:"name,optional"`
	BaseType        hcl.Expression `hcl:"base_type,optional"`
	PermittedValues hcl.Expression `hcl:"permitted_values,optional"`
	ForbiddenValues hcl.Expression `hcl:"forbidden_values,optional"`
	InheritsFrom    string         `hcl:"inherits_from,optional"`
	DeclRange       hcl.Range      `hcl:",def_range"`
}

type typeProfileBlock struct {
	ID               string    `hcl:"id,label"`
	Name             string    `hcl:"name,optional"`
	ValidationPolicy string    `hcl:"validation_policy,optional"`
	InheritsFrom     []string  `hcl:"inherits_from,optional"`
	Attributes       []string  `hcl:"attributes,optional"`
	DeclRange        hcl.Range `hcl:",def_range"`
}

type operationBlock struct {
	ID           string    `hcl:"id,label"`
	Name         string    `hcl:"name,optional"`
	ExecutableOn string    `hcl:"executable_on,optional"`
	InheritsFrom string    `hcl:"inherits_from,optional"`
	Execution    []string  `hcl:"execution,optional"`
	DeclRange    hcl.Range `hcl:",def_range"`
}

type operationStepBlock struct {
	ID        string    `hcl:"id,label"`
	Name      string    `hcl:"name,optional"`
	Action    string    `hcl:"action,optional"`
	Operation string    `hcl:"operation,optional"`
	Invokes   string    `hcl:"invokes,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type interfaceBlock struct {
	ID        string    `hcl:"id,label"`
	Name      string    `hcl:"name,optional"`
	Protocol  string    `hcl:"protocol,optional"`
	Endpoint  string    `hcl:"endpoint,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}
