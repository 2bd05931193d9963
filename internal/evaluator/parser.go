package evaluator

import (
	"fmt"
	"strings"
)

// Parse lexes and parses a fragment body into a flat-and-nested node tree.
func Parse(body string) ([]Node, error) {
	items := lex(body)
	nodes, rest, err := parseUntil(items, "")
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("unexpected tag %q with no matching opener", rest[0].text)
	}
	return nodes, nil
}

// parseUntil consumes items until it sees a tag whose keyword is one of the
// stop keywords (or runs out of items), returning the nodes built so far and
// whatever items remain starting at the stopping tag.
func parseUntil(items []item, stopKeywords ...string) ([]Node, []item, error) {
	var nodes []Node
	for len(items) > 0 {
		it := items[0]

		if it.kind == itemTag {
			keyword, _ := splitTag(it.text)
			if contains(stopKeywords, keyword) {
				return nodes, items, nil
			}
		}

		switch it.kind {
		case itemText:
			nodes = append(nodes, TextNode{Text: it.text})
			items = items[1:]
		case itemExpr:
			nodes = append(nodes, ExprNode{Raw: it.text, Line: it.line})
			items = items[1:]
		case itemTag:
			keyword, rest := splitTag(it.text)
			switch keyword {
			case "if":
				ifNode, remaining, err := parseIf(items, rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, ifNode)
				items = remaining
			case "for":
				forNode, remaining, err := parseFor(items, rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, forNode)
				items = remaining
			case "set":
				name, expr, err := parseSet(rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, SetNode{Name: name, ExprRaw: expr})
				items = items[1:]
			default:
				return nil, nil, fmt.Errorf("unknown tag %q", keyword)
			}
		}
	}
	return nodes, nil, nil
}

func splitTag(raw string) (keyword, rest string) {
	raw = strings.TrimSpace(raw)
	sp := strings.IndexAny(raw, " \t")
	if sp == -1 {
		return raw, ""
	}
	return raw[:sp], strings.TrimSpace(raw[sp+1:])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseIf(items []item, firstCond string) (IfNode, []item, error) {
	items = items[1:] // consume "{% if %}"
	var node IfNode
	branch := IfBranch{CondRaw: firstCond}

	for {
		body, remaining, err := parseUntil(items, "elif", "else", "endif")
		if err != nil {
			return IfNode{}, nil, err
		}
		branch.Body = body
		node.Branches = append(node.Branches, branch)
		items = remaining

		if len(items) == 0 {
			return IfNode{}, nil, fmt.Errorf("unterminated {%% if %%}")
		}
		keyword, rest := splitTag(items[0].text)
		switch keyword {
		case "elif":
			branch = IfBranch{CondRaw: rest}
			items = items[1:]
			continue
		case "else":
			items = items[1:]
			body, remaining, err := parseUntil(items, "endif")
			if err != nil {
				return IfNode{}, nil, err
			}
			node.Else = body
			items = remaining
			if len(items) == 0 {
				return IfNode{}, nil, fmt.Errorf("unterminated {%% if %%}")
			}
			items = items[1:] // consume endif
			return node, items, nil
		case "endif":
			items = items[1:]
			return node, items, nil
		}
	}
}

func parseFor(items []item, header string) (ForNode, []item, error) {
	items = items[1:] // consume "{% for %}"
	varName, iterRaw, err := parseForHeader(header)
	if err != nil {
		return ForNode{}, nil, err
	}

	body, remaining, err := parseUntil(items, "endfor")
	if err != nil {
		return ForNode{}, nil, err
	}
	if len(remaining) == 0 {
		return ForNode{}, nil, fmt.Errorf("unterminated {%% for %%}")
	}
	remaining = remaining[1:] // consume endfor

	return ForNode{VarName: varName, IterRaw: iterRaw, Body: body}, remaining, nil
}

func parseForHeader(header string) (varName, iterRaw string, err error) {
	parts := strings.Fields(header)
	if len(parts) < 3 || parts[1] != "in" {
		return "", "", fmt.Errorf("malformed for-loop header %q, expected '<name> in <expr>'", header)
	}
	varName = parts[0]
	iterRaw = strings.TrimSpace(strings.TrimPrefix(header, parts[0]))
	iterRaw = strings.TrimSpace(strings.TrimPrefix(iterRaw, "in"))
	return varName, iterRaw, nil
}

func parseSet(rest string) (name, expr string, err error) {
	eq := strings.Index(rest, "=")
	if eq == -1 {
		return "", "", fmt.Errorf("malformed set statement %q, expected '<name> = <expr>'", rest)
	}
	name = strings.TrimSpace(rest[:eq])
	expr = strings.TrimSpace(rest[eq+1:])
	if name == "" || expr == "" {
		return "", "", fmt.Errorf("malformed set statement %q", rest)
	}
	return name, expr, nil
}
