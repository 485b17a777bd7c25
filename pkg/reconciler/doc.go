// Package reconciler drives a host through persistent-mode tree updates.
//
// A host implements HostConfig. For every UpdateContainer call the
// reconciler expands components and fragments, matches the resulting host
// elements against the previously committed tree by type and key, and then
// calls the host in a fixed order:
//
//	render phase   CreateInstance | CloneInstance   (children first)
//	               AppendInitialChild, FinalizeInitialChildren
//	               CreateContainerChildSet, AppendChildToContainerChildSet
//	               FinalizeContainerChildren
//	commit phase   PrepareForCommit, ReplaceContainerChildren, ResetAfterCommit
//	               DetachDeletedInstance (removed elements), callback
//
// An element whose type, props and child instances are unchanged keeps its
// previous instance and no host call is made for it.
//
// A render is discarded, and the commit phase skipped, when its context is
// cancelled, its render timeout fires or a newer update of the same
// container has started. Only the newest update can commit.
package reconciler
