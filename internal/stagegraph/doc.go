// Package stagegraph defines the closed set of hiring pipeline stages and the
// directed transition relation between them.
//
// The graph is strictly linear on the forward path (applied, screening,
// interview, offer, hired) with a rejection edge from every non-terminal
// stage. Hired and rejected are terminal. IsLegal is a pure function over two
// stage values; the package holds no state and performs no I/O.
//
// Treat this package as the single source of truth for stage semantics; when
// you add a stage, extend the forward edge table and the store migrations
// together.
package stagegraph
