// Package stores provides the SQLite commit journal. The journal records
// every mount root and every commit applied to, or rejected by, its engine
// instance, so the history of a long-running session can be inspected
// after the fact.
package stores
