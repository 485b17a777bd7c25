package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type testInst struct {
	id       int
	typ      string
	props    Props
	children []*testInst
}

type testRoot struct {
	committed []*testInst
}

// recordingHost logs every callback in call order.
type recordingHost struct {
	nextID     int
	calls      []string
	detached   []*testInst
	failText   bool
	failCommit error
}

func (h *recordingHost) record(format string, args ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *recordingHost) reset() { h.calls = nil }

func (h *recordingHost) GetRootHostContext(*testRoot) HostContext { return "root" }

func (h *recordingHost) GetChildHostContext(parent HostContext, _ string, _ *testRoot) HostContext {
	return parent
}

func (h *recordingHost) ShouldSetTextContent(typ string, _ Props) bool { return typ == "label" }

func (h *recordingHost) CreateInstance(_ context.Context, typ string, props Props, _ *testRoot, _ HostContext) (*testInst, error) {
	h.nextID++
	h.record("create %s", typ)
	return &testInst{id: h.nextID, typ: typ, props: props}, nil
}

func (h *recordingHost) CreateTextInstance(_ context.Context, text string, _ *testRoot, _ HostContext) (*testInst, error) {
	h.record("text %s", text)
	if h.failText {
		return nil, errors.New("text not supported")
	}
	h.nextID++
	return &testInst{id: h.nextID, typ: "#text"}, nil
}

func (h *recordingHost) CloneInstance(_ context.Context, inst *testInst, typ string, _, newProps Props, _ bool) (*testInst, error) {
	h.nextID++
	h.record("clone %s", typ)
	return &testInst{id: h.nextID, typ: typ, props: newProps}, nil
}

func (h *recordingHost) AppendInitialChild(parent, child *testInst) {
	h.record("append %s<-%s", parent.typ, child.typ)
	parent.children = append(parent.children, child)
}

func (h *recordingHost) FinalizeInitialChildren(inst *testInst, _ string, _ Props, _ *testRoot, _ HostContext) bool {
	h.record("finalize %s", inst.typ)
	return false
}

func (h *recordingHost) CreateContainerChildSet(*testRoot) *[]*testInst {
	h.record("childset")
	return &[]*testInst{}
}

func (h *recordingHost) AppendChildToContainerChildSet(set *[]*testInst, child *testInst) error {
	h.record("childset+ %s", child.typ)
	*set = append(*set, child)
	return nil
}

func (h *recordingHost) FinalizeContainerChildren(context.Context, *testRoot, *[]*testInst) error {
	h.record("seal")
	return nil
}

func (h *recordingHost) PrepareForCommit(*testRoot) { h.record("prepare") }

func (h *recordingHost) ReplaceContainerChildren(_ context.Context, root *testRoot, set *[]*testInst) error {
	h.record("replace")
	if h.failCommit != nil {
		return h.failCommit
	}
	root.committed = *set
	return nil
}

func (h *recordingHost) ResetAfterCommit(*testRoot) { h.record("reset") }

func (h *recordingHost) DetachDeletedInstance(inst *testInst) {
	h.record("detach %s", inst.typ)
	h.detached = append(h.detached, inst)
}

func (h *recordingHost) ScheduleTimeout(fn func(), d time.Duration) TimeoutHandle {
	return time.AfterFunc(d, fn)
}

func (h *recordingHost) CancelTimeout(handle TimeoutHandle) {
	if t, ok := handle.(*time.Timer); ok {
		t.Stop()
	}
}

func (h *recordingHost) NoTimeout() TimeoutHandle { return -1 }

func (h *recordingHost) ResolveEventPriority(eventType string) EventPriority {
	if eventType == "click" {
		return DiscreteEventPriority
	}
	return DefaultEventPriority
}
