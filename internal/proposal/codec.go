package proposal

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/promotor/internal/ids"
)

type document struct {
	Authors []string `yaml:"authors"`
	AI      float64  `yaml:"ai"`
	ID      string   `yaml:"id,omitempty"`
	Name    string   `yaml:"name"`
	Text    string   `yaml:"text"`
}

// Decode parses a proposal document. The pool number is not part of the
// document; callers set it from the record key.
func Decode(data []byte) (Proposal, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Proposal{}, fmt.Errorf("proposal: document is empty")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Proposal{}, fmt.Errorf("proposal: decode: %w", err)
	}
	p := Proposal{
		Name:    doc.Name,
		Authors: doc.Authors,
		AI:      doc.AI,
		Text:    doc.Text,
	}
	if raw := strings.TrimSpace(doc.ID); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return Proposal{}, fmt.Errorf("proposal: invalid id %q", doc.ID)
		}
		p.ID = id
	}
	if err := p.Validate(); err != nil {
		return Proposal{}, err
	}
	return p, nil
}

// Encode renders a proposal document with keys in the order
// authors, ai, id, name, text. The id is written only for distributed
// proposals. The text is a literal block unless that block would not
// decode back to the same text, in which case it is double quoted.
func Encode(p Proposal) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(p.Text, "\n") {
		data, err := render(p, yaml.LiteralStyle)
		if err != nil {
			return nil, err
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err == nil && doc.Text == p.Text {
			return data, nil
		}
	}
	return render(p, yaml.DoubleQuotedStyle)
}

func render(p Proposal, textStyle yaml.Style) ([]byte, error) {
	authors := &yaml.Node{Kind: yaml.SequenceNode}
	for _, name := range p.Authors {
		authors.Content = append(authors.Content, strNode(name))
	}
	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		keyNode("authors"), authors,
		keyNode("ai"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: FormatAI(p.AI)},
	)
	if p.Distributed() {
		id := strNode(ids.Format(p.ID))
		id.Style = yaml.DoubleQuotedStyle
		root.Content = append(root.Content, keyNode("id"), id)
	}
	text := strNode(p.Text)
	text.Style = textStyle
	root.Content = append(root.Content,
		keyNode("name"), strNode(p.Name),
		keyNode("text"), text,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("proposal: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("proposal: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
