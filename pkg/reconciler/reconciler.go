package reconciler

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// maxComponentDepth bounds component expansion so a component rendering
// itself fails instead of recursing forever.
const maxComponentDepth = 256

type settings struct {
	logger        zerolog.Logger
	renderTimeout time.Duration
}

// Option configures a Reconciler.
type Option func(*settings)

// WithLogger sets the reconciler logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithRenderTimeout discards non-discrete renders that take longer than d.
// Zero disables the timeout.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.renderTimeout = d
	}
}

// Reconciler drives one host implementation. It holds no per-container
// state and may serve many containers.
type Reconciler[I comparable, S any, C any] struct {
	host HostConfig[I, S, C]
	settings
}

// New creates a reconciler for host.
func New[I comparable, S any, C any](host HostConfig[I, S, C], opts ...Option) *Reconciler[I, S, C] {
	r := &Reconciler[I, S, C]{
		host:     host,
		settings: settings{logger: zerolog.Nop()},
	}
	for _, opt := range opts {
		opt(&r.settings)
	}
	return r
}

// Container is the committed tree of one root.
type Container[I comparable, C any] struct {
	info       C
	mu         sync.Mutex
	current    []*fiber[I]
	generation atomic.Uint64
	commits    int
}

// CreateContainer creates an empty container over the host root info.
func (r *Reconciler[I, S, C]) CreateContainer(info C) *Container[I, C] {
	return &Container[I, C]{info: info}
}

// Info returns the host root info.
func (c *Container[I, C]) Info() C { return c.info }

// Commits returns the number of committed updates.
func (c *Container[I, C]) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

// Instances returns the committed root-level host instances.
func (c *Container[I, C]) Instances() []I {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]I, 0, len(c.current))
	for _, f := range c.current {
		out = append(out, f.inst)
	}
	return out
}

type fiber[I comparable] struct {
	typ      string
	key      string
	props    Props
	text     bool
	inst     I
	children []*fiber[I]
}

// hostNode is an Element or Text after component expansion.
type hostNode struct {
	typ      string
	key      string
	props    Props
	children []Node
	text     bool
}

type updateSettings struct {
	event    string
	callback func()
}

// UpdateOption configures one UpdateContainer call.
type UpdateOption func(*updateSettings)

// WithEvent names the event that caused the update. The host maps it to a
// priority.
func WithEvent(eventType string) UpdateOption {
	return func(u *updateSettings) {
		u.event = eventType
	}
}

// WithCallback runs fn after a successful commit.
func WithCallback(fn func()) UpdateOption {
	return func(u *updateSettings) {
		u.callback = fn
	}
}

type work[I comparable] struct {
	ctx     context.Context
	deleted []*fiber[I]
	created int
	cloned  int
	reused  int
}

// UpdateContainer renders node into c and commits the result. A nil node
// commits an empty tree. It returns a *DiscardedError when the render was
// dropped before commit; host errors are returned as is and leave the
// committed tree untouched.
func (r *Reconciler[I, S, C]) UpdateContainer(ctx context.Context, node Node, c *Container[I, C], opts ...UpdateOption) error {
	var u updateSettings
	for _, opt := range opts {
		opt(&u)
	}
	priority := r.host.ResolveEventPriority(u.event)
	gen := c.generation.Add(1)

	c.mu.Lock()
	base := c.current
	c.mu.Unlock()

	renderCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if r.renderTimeout > 0 && priority != DiscreteEventPriority {
		handle := r.host.ScheduleTimeout(func() { cancel(ErrRenderTimeout) }, r.renderTimeout)
		if handle != r.host.NoTimeout() {
			defer r.host.CancelTimeout(handle)
		}
	}

	w := &work[I]{ctx: renderCtx}
	var nodes []Node
	if node != nil {
		nodes = []Node{node}
	}
	children, err := r.reconcileChildren(w, c.info, r.host.GetRootHostContext(c.info), base, nodes)
	if err != nil {
		return err
	}

	set := r.host.CreateContainerChildSet(c.info)
	for _, f := range children {
		if err := r.host.AppendChildToContainerChildSet(set, f.inst); err != nil {
			return err
		}
	}
	if err := r.host.FinalizeContainerChildren(renderCtx, c.info, set); err != nil {
		return err
	}

	c.mu.Lock()
	if cause := discardCause(renderCtx, c, gen); cause != nil {
		c.mu.Unlock()
		r.logger.Debug().
			Uint64("generation", gen).
			Err(cause).
			Msg("Render discarded before commit")
		return &DiscardedError{Cause: cause}
	}
	r.host.PrepareForCommit(c.info)
	err = r.host.ReplaceContainerChildren(ctx, c.info, set)
	r.host.ResetAfterCommit(c.info)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.current = children
	c.commits++
	c.mu.Unlock()

	for _, f := range w.deleted {
		r.detach(f)
	}

	r.logger.Debug().
		Uint64("generation", gen).
		Str("priority", priority.String()).
		Int("created", w.created).
		Int("cloned", w.cloned).
		Int("reused", w.reused).
		Int("deleted", len(w.deleted)).
		Msg("Update committed")

	if u.callback != nil {
		u.callback()
	}
	return nil
}

func discardCause[I comparable, C any](ctx context.Context, c *Container[I, C], gen uint64) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	if c.generation.Load() != gen {
		return ErrSuperseded
	}
	return nil
}

func (r *Reconciler[I, S, C]) detach(f *fiber[I]) {
	for _, child := range f.children {
		r.detach(child)
	}
	r.host.DetachDeletedInstance(f.inst)
}

// reconcileChildren matches nodes against old and builds the new fibers.
// Keyed nodes match by key, unkeyed ones by position among unkeyed
// siblings. Unmatched old fibers are queued for deletion.
func (r *Reconciler[I, S, C]) reconcileChildren(w *work[I], root C, hostCtx HostContext, old []*fiber[I], nodes []Node) ([]*fiber[I], error) {
	expanded, err := expand(nil, nodes, 0)
	if err != nil {
		return nil, err
	}

	keyed := make(map[string]*fiber[I])
	var unkeyed []*fiber[I]
	for _, f := range old {
		if f.key != "" {
			keyed[f.key] = f
		} else {
			unkeyed = append(unkeyed, f)
		}
	}

	used := make(map[*fiber[I]]bool, len(old))
	out := make([]*fiber[I], 0, len(expanded))
	next := 0
	for _, n := range expanded {
		var prev *fiber[I]
		if n.key != "" {
			prev = keyed[n.key]
		} else if next < len(unkeyed) {
			prev = unkeyed[next]
			next++
		}
		if prev != nil && (used[prev] || prev.typ != n.typ || prev.text != n.text) {
			prev = nil
		}
		if prev != nil {
			used[prev] = true
		}

		f, err := r.reconcileNode(w, root, hostCtx, prev, n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	for _, f := range old {
		if !used[f] {
			w.deleted = append(w.deleted, f)
		}
	}
	return out, nil
}

func (r *Reconciler[I, S, C]) reconcileNode(w *work[I], root C, hostCtx HostContext, prev *fiber[I], n hostNode) (*fiber[I], error) {
	if w.ctx.Err() != nil {
		return nil, &DiscardedError{Cause: context.Cause(w.ctx)}
	}

	if n.text {
		inst, err := r.host.CreateTextInstance(w.ctx, n.typ, root, hostCtx)
		if err != nil {
			return nil, err
		}
		w.created++
		return &fiber[I]{typ: n.typ, key: n.key, text: true, inst: inst}, nil
	}

	// The caller may mutate its map between renders; the fiber keeps its own
	// copy so the next comparison sees the change.
	props := maps.Clone(n.props)

	var oldChildren []*fiber[I]
	if prev != nil {
		oldChildren = prev.children
	}
	childNodes := n.children
	if r.host.ShouldSetTextContent(n.typ, props) {
		childNodes = nil
	}
	childCtx := r.host.GetChildHostContext(hostCtx, n.typ, root)
	children, err := r.reconcileChildren(w, root, childCtx, oldChildren, childNodes)
	if err != nil {
		return nil, err
	}

	f := &fiber[I]{typ: n.typ, key: n.key, props: props, children: children}
	if prev != nil && sameInstances(prev.children, children) && reflect.DeepEqual(prev.props, props) {
		f.inst = prev.inst
		w.reused++
		return f, nil
	}

	if prev != nil {
		f.inst, err = r.host.CloneInstance(w.ctx, prev.inst, n.typ, prev.props, props, false)
		w.cloned++
	} else {
		f.inst, err = r.host.CreateInstance(w.ctx, n.typ, props, root, hostCtx)
		w.created++
	}
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		r.host.AppendInitialChild(f.inst, child.inst)
	}
	r.host.FinalizeInitialChildren(f.inst, n.typ, props, root, hostCtx)
	return f, nil
}

func sameInstances[I comparable](a, b []*fiber[I]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].inst != b[i].inst {
			return false
		}
	}
	return true
}

// expand flattens fragments and renders components until only host
// elements and text remain.
func expand(out []hostNode, nodes []Node, depth int) ([]hostNode, error) {
	if depth > maxComponentDepth {
		return nil, fmt.Errorf("%w: component nesting deeper than %d", ErrInvalidNode, maxComponentDepth)
	}
	for _, n := range nodes {
		var err error
		switch v := n.(type) {
		case nil:
		case Element:
			out = append(out, hostNode{typ: v.Type, key: v.Key, props: v.Props, children: v.Children})
		case *Element:
			if v != nil {
				out = append(out, hostNode{typ: v.Type, key: v.Key, props: v.Props, children: v.Children})
			}
		case Text:
			out = append(out, hostNode{typ: string(v), text: true})
		case Fragment:
			out, err = expand(out, v, depth)
		case Component:
			out, err = expandComponent(out, v, depth)
		case *Component:
			if v != nil {
				out, err = expandComponent(out, *v, depth)
			}
		default:
			err = fmt.Errorf("%w: unsupported node %T", ErrInvalidNode, n)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// expandComponent renders c. A keyed component namespaces the keys of the
// host nodes it renders so they match only against its own earlier output.
func expandComponent(out []hostNode, c Component, depth int) ([]hostNode, error) {
	if c.Render == nil {
		return nil, fmt.Errorf("%w: component %q has no render function", ErrInvalidNode, c.Name)
	}
	start := len(out)
	out, err := expand(out, []Node{c.Render(c.Props, c.Children)}, depth+1)
	if err != nil {
		return nil, err
	}
	if c.Key != "" {
		for i := start; i < len(out); i++ {
			suffix := out[i].key
			if suffix == "" {
				suffix = strconv.Itoa(i - start)
			}
			out[i].key = c.Key + "/" + suffix
		}
	}
	return out, nil
}
