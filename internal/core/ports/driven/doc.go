// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding, completion, reranking and
// vision services, the two indexes, and the passage and session stores.
package driven
