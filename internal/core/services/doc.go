// Package services implements the driving port interfaces.
// Services contain the pipeline logic: query augmentation, hybrid
// retrieval, reranking, prompt assembly, completion fallback and
// corpus ingestion, orchestrating calls to driven ports (adapters).
package services
