package deck

// Object is any view or layer the Deck can hold.
type Object interface {
	// ID is the prop-derived identity used to match objects across commits.
	ID() string
	// Class is the engine class name, for example "ScatterplotLayer".
	Class() string
	// Props returns a copy of the property bag the object was built from.
	Props() Props
}

// Layer is a drawable layer. Layer order is paint order.
type Layer interface {
	Object
	isLayer()
}

// View is a viewport definition.
type View interface {
	Object
	isView()
}

type base struct {
	class     string
	id        string
	props     Props
	anonymous bool
}

func newBase(class string, props Props) (base, error) {
	props = props.Clone()
	if err := checkCommon(class, props); err != nil {
		return base{}, err
	}
	id, ok := props.String("id")
	anonymous := !ok || id == ""
	if anonymous {
		id = class
	}
	return base{class: class, id: id, props: props, anonymous: anonymous}, nil
}

func (b *base) ID() string    { return b.id }
func (b *base) Class() string { return b.class }
func (b *base) Props() Props  { return b.props.Clone() }

func (b *base) anonymousID() bool { return b.anonymous }

// BaseLayer is the layer implementation shared by every layer class.
type BaseLayer struct {
	base
}

func (*BaseLayer) isLayer() {}

// Visible reports the visible prop, defaulting to true.
func (l *BaseLayer) Visible() bool {
	if v, ok := l.props.Bool("visible"); ok {
		return v
	}
	return true
}

// NewLayer builds a layer of the given class. The id prop defaults to the
// class name when absent.
func NewLayer(class string, props Props) (*BaseLayer, error) {
	b, err := newBase(class, props)
	if err != nil {
		return nil, err
	}
	return &BaseLayer{base: b}, nil
}

// BaseView is the view implementation shared by every view class.
type BaseView struct {
	base
}

func (*BaseView) isView() {}

// NewView builds a view of the given class.
func NewView(class string, props Props) (*BaseView, error) {
	b, err := newBase(class, props)
	if err != nil {
		return nil, err
	}
	return &BaseView{base: b}, nil
}
