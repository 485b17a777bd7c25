package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/reconciler"
)

// CurrentVersion is the only document version understood.
const CurrentVersion = "v1"

// SlotType marks where a component template places its call-site children.
const SlotType = "Children"

// Document is a parsed scene file.
type Document struct {
	Version    string              `json:"version" yaml:"version" validate:"required,eq=v1"`
	Deck       DeckSpec            `json:"deck" yaml:"deck"`
	Components map[string]NodeSpec `json:"components,omitempty" yaml:"components,omitempty" validate:"dive"`
	Layers     []NodeSpec          `json:"layers" yaml:"layers" validate:"dive"`
}

// DeckSpec is the deck configuration block of a scene.
type DeckSpec struct {
	InitialViewState deck.ViewState `json:"initialViewState" yaml:"initialViewState"`
	Controller       bool           `json:"controller,omitempty" yaml:"controller,omitempty"`
	Interleaved      bool           `json:"interleaved,omitempty" yaml:"interleaved,omitempty"`
	Width            int            `json:"width,omitempty" yaml:"width,omitempty" validate:"gte=0"`
	Height           int            `json:"height,omitempty" yaml:"height,omitempty" validate:"gte=0"`
}

// NodeSpec is one node of a scene tree. A node with only Text is a text
// child. A Type starting with an upper-case letter names a component.
type NodeSpec struct {
	Type     string         `json:"type,omitempty" yaml:"type,omitempty" validate:"required_without=Text"`
	Key      string         `json:"key,omitempty" yaml:"key,omitempty"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Children []NodeSpec     `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

// IsComponent reports whether the node names a component.
func (n NodeSpec) IsComponent() bool {
	if n.Type == "" || n.Type == SlotType {
		return false
	}
	return unicode.IsUpper([]rune(n.Type)[0])
}

var validate = validator.New()

// Validate checks field constraints, component references and component
// cycles.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return engine.NewValidationError("invalid scene document", err)
	}

	var errs []error
	for name, tmpl := range d.Components {
		if !(NodeSpec{Type: name}).IsComponent() {
			errs = append(errs, fmt.Errorf("component %q: name must start with an upper-case letter", name))
		}
		errs = append(errs, d.checkRefs(tmpl, "component "+name, true)...)
	}
	for i, n := range d.Layers {
		errs = append(errs, d.checkRefs(n, fmt.Sprintf("layers[%d]", i), false)...)
	}
	if err := d.checkCycles(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return engine.NewValidationError("invalid scene document", err)
	}
	return nil
}

func (d *Document) checkRefs(n NodeSpec, path string, inTemplate bool) []error {
	var errs []error
	switch {
	case n.Type == SlotType && !inTemplate:
		errs = append(errs, fmt.Errorf("%s: %s slot outside a component", path, SlotType))
	case n.IsComponent():
		if _, ok := d.Components[n.Type]; !ok {
			errs = append(errs, fmt.Errorf("%s: unknown component %q", path, n.Type))
		}
	}
	for i, c := range n.Children {
		errs = append(errs, d.checkRefs(c, fmt.Sprintf("%s.children[%d]", path, i), inTemplate)...)
	}
	return errs
}

func (d *Document) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(d.Components))

	var visit func(name string, trail []string) error
	var walk func(n NodeSpec, trail []string) error

	visit = func(name string, trail []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("component cycle: %s", strings.Join(append(trail, name), " -> "))
		case done:
			return nil
		}
		tmpl, ok := d.Components[name]
		if !ok {
			return nil
		}
		state[name] = visiting
		if err := walk(tmpl, append(trail, name)); err != nil {
			return err
		}
		state[name] = done
		return nil
	}
	walk = func(n NodeSpec, trail []string) error {
		if n.IsComponent() {
			if err := visit(n.Type, trail); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := walk(c, trail); err != nil {
				return err
			}
		}
		return nil
	}

	for name := range d.Components {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// Tree returns the root-level nodes as a reconciler tree. Components
// become reconciler components that expand their template on render.
func (d *Document) Tree() (reconciler.Node, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d.fragment(d.Layers, nil, nil), nil
}

func (d *Document) fragment(specs []NodeSpec, scope reconciler.Props, slot []reconciler.Node) reconciler.Fragment {
	out := make(reconciler.Fragment, 0, len(specs))
	for _, s := range specs {
		out = append(out, d.node(s, scope, slot))
	}
	return out
}

func (d *Document) node(s NodeSpec, scope reconciler.Props, slot []reconciler.Node) reconciler.Node {
	switch s.Type {
	case "":
		return reconciler.Text(s.Text)
	case SlotType:
		return reconciler.Fragment(slot)
	}
	props := bind(s.Props, scope)
	children := []reconciler.Node(d.fragment(s.Children, scope, slot))

	if !s.IsComponent() {
		return reconciler.Element{Type: s.Type, Key: s.Key, Props: props, Children: children}
	}

	tmpl := d.Components[s.Type]
	return reconciler.Component{
		Name:     s.Type,
		Key:      s.Key,
		Props:    props,
		Children: children,
		Render: func(props reconciler.Props, children []reconciler.Node) reconciler.Node {
			return d.node(tmpl, props, children)
		},
	}
}

// bind copies props, replacing "$name" string values with the value of
// name in scope. References to missing names are dropped.
func bind(props map[string]any, scope reconciler.Props) reconciler.Props {
	if props == nil {
		return nil
	}
	out := make(reconciler.Props, len(props))
	for k, v := range props {
		ref, ok := v.(string)
		if !ok || len(ref) < 2 || ref[0] != '$' {
			out[k] = v
			continue
		}
		if bound, found := scope[ref[1:]]; found {
			out[k] = bound
		}
	}
	return out
}

// DeckConfig returns the deck configuration for canvas. Interleaved scenes
// get no canvas.
func (d *Document) DeckConfig(canvas *deck.Canvas) deck.Config {
	cfg := deck.Config{
		InitialViewState: d.Deck.InitialViewState,
		Controller:       d.Deck.Controller,
		Interleaved:      d.Deck.Interleaved,
		Width:            d.Deck.Width,
		Height:           d.Deck.Height,
	}
	if !cfg.Interleaved {
		cfg.Canvas = canvas
	}
	return cfg
}

// Types returns every element type used by the document, including those
// inside component templates, in first-use order.
func (d *Document) Types() []string {
	seen := make(map[string]bool)
	var types []string
	var walk func(n NodeSpec)
	walk = func(n NodeSpec) {
		if n.Type != "" && n.Type != SlotType && !n.IsComponent() && !seen[n.Type] {
			seen[n.Type] = true
			types = append(types, n.Type)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range d.Layers {
		walk(n)
	}
	for _, name := range slices.Sorted(maps.Keys(d.Components)) {
		walk(d.Components[name])
	}
	return types
}

// Check resolves every element type against r.
func (d *Document) Check(r engine.Resolver) error {
	var errs []error
	for _, typ := range d.Types() {
		if _, err := r.Resolve(typ); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
