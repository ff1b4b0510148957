package manifest

import (
	"encoding/json"
	"fmt"
)

// PluginKind is the closed set of plugin categories a registration call can
// declare. The constructor name in the registration file is resolved to a
// kind exactly once, during extraction; downstream consumers switch on the
// kind, never on the raw constructor string.
type PluginKind int

const (
	KindParser PluginKind = iota
	KindExporter
	KindModifier
	KindUpgrader
	KindUtility
)

// constructorKinds maps the recognized registration constructor names to
// their plugin kinds. This is the authoritative, immutable table; an
// unrecognized constructor is not a plugin registration.
var constructorKinds = map[string]PluginKind{
	"ParserPlugin":   KindParser,
	"ExporterPlugin": KindExporter,
	"ModifierPlugin": KindModifier,
	"UpgraderPlugin": KindUpgrader,
	"BasePlugin":     KindUtility,
}

// ConstructorNames returns the recognized registration constructor names.
// The result is a fresh slice; callers may not mutate the underlying table.
func ConstructorNames() []string {
	names := make([]string, 0, len(constructorKinds))
	for name := range constructorKinds {
		names = append(names, name)
	}
	return names
}

// KindForConstructor resolves a constructor class name to its plugin kind.
func KindForConstructor(name string) (PluginKind, bool) {
	kind, ok := constructorKinds[name]
	return kind, ok
}

// String returns the JSON discriminator used by the plugin catalog.
// BasePlugin registrations historically serialize as "function".
func (k PluginKind) String() string {
	switch k {
	case KindParser:
		return "parser"
	case KindExporter:
		return "exporter"
	case KindModifier:
		return "modifier"
	case KindUpgrader:
		return "upgrader"
	case KindUtility:
		return "function"
	default:
		return "function"
	}
}

// MarshalJSON serializes the kind as its catalog discriminator string.
func (k PluginKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// CallableKind distinguishes class entry points from plain functions.
type CallableKind int

const (
	CallableClass CallableKind = iota
	CallableFunction
)

func (k CallableKind) String() string {
	if k == CallableClass {
		return "class"
	}
	return "function"
}

func (k CallableKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// StepCategory tags an upgrade step as a file mutation or a data transform.
type StepCategory int

const (
	StepFile StepCategory = iota
	StepSystem
	StepUnknown
)

// ParseStepCategory maps the upper-cased final segment of an upgrade_type
// expression to a category. Anything unrecognized is StepUnknown.
func ParseStepCategory(s string) StepCategory {
	switch s {
	case "FILE":
		return StepFile
	case "SYSTEM":
		return StepSystem
	default:
		return StepUnknown
	}
}

func (c StepCategory) String() string {
	switch c {
	case StepFile:
		return "FILE"
	case StepSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

func (c StepCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// ParameterDescriptor describes one constructor or function parameter.
type ParameterDescriptor struct {
	Annotation string `json:"annotation,omitempty"`
	Default    string `json:"default,omitempty"`
	Required   bool   `json:"is_required"`
}

// CallableDescriptor identifies a callable by module path and exported name.
// Module is never empty on a resolved descriptor; an unresolvable symbol is
// an extraction failure, not an empty-string descriptor.
type CallableDescriptor struct {
	Module           string                         `json:"module"`
	Name             string                         `json:"name"`
	Kind             CallableKind                   `json:"type"`
	ReturnAnnotation *string                        `json:"return_annotation"`
	Parameters       map[string]ParameterDescriptor `json:"parameters"`
}

// NewCallable builds a descriptor for a resolved symbol. The callable kind
// follows the naming convention of the scripting language: an initial
// uppercase letter means a class, anything else a function. Parameters start
// empty and are filled on demand by the parameter extractor.
func NewCallable(module, name string) CallableDescriptor {
	kind := CallableFunction
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		kind = CallableClass
	}
	return CallableDescriptor{
		Module:     module,
		Name:       name,
		Kind:       kind,
		Parameters: map[string]ParameterDescriptor{},
	}
}

// UpgradeStep is one unit of a multi-step migration declared through a
// register_step decorator.
type UpgradeStep struct {
	Name          string             `json:"name"`
	Func          CallableDescriptor `json:"func"`
	TargetVersion string             `json:"target_version"`
	Category      StepCategory       `json:"upgrade_type"`
	Priority      int                `json:"priority"`
	MinVersion    string             `json:"min_version,omitempty"`
	MaxVersion    string             `json:"max_version,omitempty"`
}

// DefaultStepPriority is assigned when a decorator omits priority.
const DefaultStepPriority = 100

// DefaultTargetVersion is assigned when a decorator omits target_version.
const DefaultTargetVersion = "unknown"

// PluginRecord is one discovered plugin registration. Optional fields are
// omitted from JSON when inapplicable, never serialized as null.
type PluginRecord struct {
	Name            string              `json:"name"`
	Kind            PluginKind          `json:"plugin_type"`
	Obj             CallableDescriptor  `json:"obj"`
	CallMethod      string              `json:"call_method,omitempty"`
	Config          *CallableDescriptor `json:"config,omitempty"`
	Description     string              `json:"description,omitempty"`
	IOType          string              `json:"io_type,omitempty"`
	RequiresStore   *bool               `json:"requires_store,omitempty"`
	VersionStrategy any                 `json:"version_strategy,omitempty"`
	VersionReader   any                 `json:"version_reader,omitempty"`
	UpgradeSteps    []UpgradeStep       `json:"upgrade_steps,omitempty"`
}

// Package is the single JSON document produced per extracted package.
type Package struct {
	Name     string         `json:"name"`
	Plugins  []PluginRecord `json:"plugins"`
	Metadata map[string]any `json:"metadata"`
}

// NewPackage returns an empty package document for the given name.
func NewPackage(name string) *Package {
	return &Package{
		Name:     name,
		Plugins:  []PluginRecord{},
		Metadata: map[string]any{},
	}
}

// Add appends a plugin record, enforcing name uniqueness within the package.
// The first occurrence of a name wins; duplicates are rejected so the caller
// can log and move on.
func (p *Package) Add(record PluginRecord) error {
	for i := range p.Plugins {
		if p.Plugins[i].Name == record.Name {
			return fmt.Errorf("duplicate plugin name %q", record.Name)
		}
	}
	p.Plugins = append(p.Plugins, record)
	return nil
}

// Marshal renders the document. NewPackage initializes Plugins and Metadata
// so an empty package serializes as [] and {} rather than null.
func (p *Package) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
