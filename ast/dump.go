package ast

// Outline is a serialisable view of a tree: kinds, slot names and token
// texts, without whitespace or parent links.
type Outline struct {
	Kind     string     `yaml:"kind" json:"kind"`
	Slot     string     `yaml:"slot,omitempty" json:"slot,omitempty"`
	Tags     string     `yaml:"tags,omitempty" json:"tags,omitempty"`
	Token    string     `yaml:"token,omitempty" json:"token,omitempty"`
	Text     string     `yaml:"text,omitempty" json:"text,omitempty"`
	Line     int        `yaml:"line,omitempty" json:"line,omitempty"`
	Column   int        `yaml:"column,omitempty" json:"column,omitempty"`
	Expected []string   `yaml:"expected,omitempty" json:"expected,omitempty"`
	Children []*Outline `yaml:"children,omitempty" json:"children,omitempty"`
}

// NewOutline builds the outline of the tree rooted at n.
func NewOutline(n Node) *Outline {
	if n == nil {
		return nil
	}
	return outline(n, "")
}

func outline(n Node, slot string) *Outline {
	o := &Outline{Slot: slot}
	switch n := n.(type) {
	case *Token:
		o.Kind = "Token"
		o.Token = n.Kind.String()
		o.Text = n.Text
		o.Line, o.Column = n.Pos.Line, n.Pos.Column
		return o
	case *List:
		o.Kind = "List"
		for _, e := range n.elems {
			o.Children = append(o.Children, outline(e, ""))
		}
		return o
	case *SeparatedList:
		o.Kind = "SeparatedList"
		for i, e := range n.elems {
			if s := n.seps[i]; s != nil {
				o.Children = append(o.Children, outline(s, "separator"))
			}
			o.Children = append(o.Children, outline(e, ""))
		}
		return o
	case *ErrorNode:
		o.Kind = "Error"
		o.Tags = TagsOf(n).String()
		for _, k := range n.Expected {
			o.Expected = append(o.Expected, k.String())
		}
		for _, c := range n.children {
			o.Children = append(o.Children, outline(c, ""))
		}
		if n.Intended != Invalid {
			o.Kind = "Error(" + n.Intended.String() + ")"
		}
		return o
	case *Branch:
		o.Kind = n.kind.String()
		if t := n.kind.Tags(); t != 0 {
			o.Tags = t.String()
		}
		slots := n.kind.Slots()
		for i, c := range n.slots {
			if c != nil {
				o.Children = append(o.Children, outline(c, slots[i]))
			}
		}
	}
	return o
}

// Shape returns the outline with positions removed, for comparing trees
// parsed from differently spaced input.
func (o *Outline) Shape() *Outline {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Line, cp.Column = 0, 0
	cp.Children = nil
	for _, c := range o.Children {
		cp.Children = append(cp.Children, c.Shape())
	}
	return &cp
}
