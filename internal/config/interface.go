package config

// ArgumentDefinition is a fragment's declared argument, as named in its
// frontmatter `args`/`arguments` table: a name paired with an optional
// default. A nil Default means the argument is required.
type ArgumentDefinition struct {
	Name    string
	Default *string
}

// Required reports whether the argument has no default and must be bound by
// every caller.
func (a ArgumentDefinition) Required() bool {
	return a.Default == nil
}

// EngineConfig bundles the three external-collaborator inputs of a render:
// the detected project and language names, and the ordered list of roots to
// search. No engine entry point takes it: engine.New receives project and
// language through engine.Options and builds the roots with BuildRoots.
type EngineConfig struct {
	Project  string
	Language string
	Roots    []Root
}
