// Package textsplitters provides strategies to split text for RAG ingestion.
//
// The package exposes a simple Splitter interface and a factory to construct
// concrete implementations by Kind, allowing new strategies to be added
// without affecting callers.
//
// Implemented strategies
//   - Paragraph boundary grouping: packs paragraphs into chunks that each
//     target a configured size, without ever splitting a paragraph.
package textsplitters
