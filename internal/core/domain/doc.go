// Package domain contains the core business entities for the guideline
// question-answering pipeline: documents, passages, retrieval results,
// sessions and answers. It has no dependencies on adapters or services.
package domain
