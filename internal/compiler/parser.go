package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/annotate/pkg/domain"
	"gopkg.in/yaml.v3"
)

// document is the on-disk program format.
type document struct {
	Name  string         `yaml:"name"`
	Nodes []*domain.Node `yaml:"nodes"`
}

// LinkError reports a node that cannot be linked into a program.
type LinkError struct {
	NodeID string
	Field  string
	Ref    string
	Reason string
}

func (e *LinkError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("node %q: %s %q: %s", e.NodeID, e.Field, e.Ref, e.Reason)
	}
	return fmt.Sprintf("node %q: %s: %s", e.NodeID, e.Field, e.Reason)
}

// Parser converts program documents into linked Programs.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML (or JSON) program document and links it.
func (p *Parser) Parse(data []byte) (*domain.Program, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	return Link(doc.Name, doc.Nodes)
}

// ParseFile reads and parses a program file.
// The program name defaults to the file name without extension.
func (p *Parser) ParseFile(path string) (*domain.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	prog, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if prog.Name == "" {
		prog.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return prog, nil
}

// Link validates nodes and resolves their Next/Target references.
// A node without an explicit next falls through to the following node;
// halt nodes and the last node end the run.
func Link(name string, nodes []*domain.Node) (*domain.Program, error) {
	if len(nodes) == 0 {
		return nil, domain.ErrEmptyProgram
	}

	index := make(map[string]*domain.Node, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return nil, &LinkError{NodeID: fmt.Sprintf("#%d", i), Field: "node", Reason: "empty entry"}
		}
		if n.ID == "" {
			return nil, &LinkError{NodeID: fmt.Sprintf("#%d", i), Field: "id", Reason: "missing"}
		}
		if _, dup := index[n.ID]; dup {
			return nil, &LinkError{NodeID: n.ID, Field: "id", Reason: "duplicate"}
		}
		if n.Op == "" {
			return nil, &LinkError{NodeID: n.ID, Field: "op", Reason: "missing"}
		}
		index[n.ID] = n
	}

	resolve := func(n *domain.Node, field, ref string) (*domain.Node, error) {
		target, ok := index[ref]
		if !ok {
			return nil, &LinkError{NodeID: n.ID, Field: field, Ref: ref, Reason: domain.ErrNodeNotFound.Error()}
		}
		return target, nil
	}

	for i, n := range nodes {
		n.Next, n.Target = nil, nil

		switch {
		case n.Op == domain.OpHalt:
		case n.NextID != "":
			next, err := resolve(n, "next", n.NextID)
			if err != nil {
				return nil, err
			}
			n.Next = next
		case i+1 < len(nodes):
			n.Next = nodes[i+1]
		}

		if n.Op == domain.OpJumpNonZero {
			if n.TargetID == "" {
				return nil, &LinkError{NodeID: n.ID, Field: "target", Reason: "required for jnz"}
			}
			if n.Var == "" {
				return nil, &LinkError{NodeID: n.ID, Field: "var", Reason: "required for jnz"}
			}
			target, err := resolve(n, "target", n.TargetID)
			if err != nil {
				return nil, err
			}
			n.Target = target
		}
	}

	return domain.NewProgram(name, nodes), nil
}
