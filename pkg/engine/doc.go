// Package engine is the bridge between a declarative element tree and the
// deck rendering engine.
//
// # Overview
//
// Every commit runs the same pipeline:
//
//  1. Build - the Factory turns each element into a Node wrapping a new
//     view or layer object
//  2. Attach - children are attached to their parent node post-order
//  3. Collect - root-level nodes are appended to a ChildSet
//  4. Flatten - the ChildSet is walked depth first, parents before children
//  5. Classify - the flat list is split into views and layers
//  6. Apply - both lists replace the engine instance's props in one call
//
// Nodes are never patched. A changed element produces a new Node and a new
// object; an unchanged subtree may be carried into the next commit as is.
// No state survives between commits except what the engine instance holds.
//
// # Lifecycle
//
// Lifecycle owns the engine instance of one mount target:
//
//	unconfigured --Configure--> configured --Finalize--> finalized
//
// Finalize before Configure is a no-op. Configure twice fails with
// ALREADY_CONFIGURED; any use after Finalize fails with ALREADY_FINALIZED.
//
// # Error Classification
//
// Errors are EngineError values carrying a class and a code:
//
//   - Permanent: UNSUPPORTED_TYPE, UNSUPPORTED_CHILD, ENGINE_APPLY_FAILED,
//     VALIDATION_ERROR
//   - Conflict: ALREADY_CONFIGURED, ALREADY_FINALIZED, NOT_CONFIGURED
//   - Transient: RENDER_DISCARDED
//
// Match them with errors.Is against the package sentinels:
//
//	if errors.Is(err, engine.ErrUnsupportedType) {
//	    // fix the scene
//	}
package engine
