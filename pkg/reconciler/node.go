package reconciler

// Props is the property bag of an element.
type Props map[string]any

// Node is anything that can appear in a declarative tree: Element, Text,
// Fragment or Component. A nil Node renders nothing.
type Node interface {
	isNode()
}

// Element is a host element.
type Element struct {
	Type     string
	Key      string
	Props    Props
	Children []Node
}

// Text is a bare text child.
type Text string

// Fragment groups nodes without a host element of its own.
type Fragment []Node

// RenderFunc renders a component from its props and children.
type RenderFunc func(props Props, children []Node) Node

// Component is a wrapper that renders to other nodes and has no host
// instance.
type Component struct {
	Name     string
	Key      string
	Props    Props
	Children []Node
	Render   RenderFunc
}

func (Element) isNode()   {}
func (Text) isNode()      {}
func (Fragment) isNode()  {}
func (Component) isNode() {}

// H builds an element. A "key" entry in props becomes the element key.
func H(typ string, props Props, children ...Node) Element {
	e := Element{Type: typ, Props: props, Children: children}
	if k, ok := props["key"].(string); ok {
		e.Key = k
		e.Props = make(Props, len(props)-1)
		for name, v := range props {
			if name != "key" {
				e.Props[name] = v
			}
		}
	}
	return e
}

// Wrap builds a component that renders its children unchanged.
func Wrap(name string, children ...Node) Component {
	return Component{
		Name:     name,
		Children: children,
		Render: func(_ Props, children []Node) Node {
			return Fragment(children)
		},
	}
}
