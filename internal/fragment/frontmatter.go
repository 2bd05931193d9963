package fragment

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prompy/prompy/internal/config"
)

// rawMetadata is the shape of a fragment's frontmatter block as YAML
// actually gives it to us, before normalization into Parsed's typed fields.
// Args and Arguments are decoded as raw *yaml.Node mappings, not
// map[string]any, because a Go map has no order and argument declaration
// order is significant (positional arguments bind to declared arguments in
// that order).
type rawMetadata struct {
	Description string    `yaml:"description"`
	Categories  []string  `yaml:"categories"`
	Args        yaml.Node `yaml:"args"`
	Arguments   yaml.Node `yaml:"arguments"`
}

// splitFrontmatter separates a leading "---\n...\n---\n" metadata block
// from the body that follows. If the file does not begin with a "---"
// line, there is no metadata and the whole input is the body.
func splitFrontmatter(raw string) (metadata string, body string, hasMetadata bool) {
	const delim = "---"

	lines := strings.SplitAfter(raw, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\n") != delim {
		return "", raw, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\n") == delim {
			metaLines := lines[1:i]
			bodyLines := lines[i+1:]
			return strings.Join(metaLines, ""), strings.Join(bodyLines, ""), true
		}
	}

	// Opening delimiter with no closing delimiter: treat the whole file as
	// body, same as having no frontmatter at all.
	return "", raw, false
}

// parseMetadata decodes a frontmatter block into Parsed's typed fields,
// merging the args/arguments tables per the declared precedence: if both
// are present, args wins on key collision.
func parseMetadata(yamlText string) (description string, categories []string, args []config.ArgumentDefinition, err error) {
	if strings.TrimSpace(yamlText) == "" {
		return "", nil, nil, nil
	}

	var raw rawMetadata
	if err := yaml.Unmarshal([]byte(yamlText), &raw); err != nil {
		return "", nil, nil, err
	}

	merged := make(map[string]*yaml.Node, len(raw.Arguments.Content)/2+len(raw.Args.Content)/2)
	order := make([]string, 0, len(raw.Arguments.Content)/2+len(raw.Args.Content)/2)
	for _, pair := range mappingPairs(&raw.Arguments) {
		if _, seen := merged[pair.name]; !seen {
			order = append(order, pair.name)
		}
		merged[pair.name] = pair.value
	}
	for _, pair := range mappingPairs(&raw.Args) {
		if _, seen := merged[pair.name]; !seen {
			order = append(order, pair.name)
		}
		merged[pair.name] = pair.value // args always wins on collision, since it is applied last
	}

	defs := make([]config.ArgumentDefinition, 0, len(order))
	for _, name := range order {
		defs = append(defs, toArgumentDefinition(name, merged[name]))
	}

	return raw.Description, raw.Categories, defs, nil
}

// mappingPairs walks a YAML mapping node's key/value pairs in declaration
// order, returning them as a slice of (name, valueNode) so callers can
// iterate deterministically; a nil or non-mapping node yields nothing.
func mappingPairs(node *yaml.Node) []mappingPair {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	pairs := make([]mappingPair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, mappingPair{name: node.Content[i].Value, value: node.Content[i+1]})
	}
	return pairs
}

type mappingPair struct {
	name  string
	value *yaml.Node
}

func toArgumentDefinition(name string, value *yaml.Node) config.ArgumentDefinition {
	if value == nil || value.Tag == "!!null" {
		return config.ArgumentDefinition{Name: name, Default: nil}
	}
	s := value.Value
	return config.ArgumentDefinition{Name: name, Default: &s}
}
