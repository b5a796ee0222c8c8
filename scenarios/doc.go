// Package scenarios holds small demo pipelines used by the stagekit CLI.
//
// Render fetches a raw buffer, decodes it into glyphs and writes them out;
// it is the pipeline to cancel part way through. Payment charges a card in
// a single slow stage and is meant to be raced against a timeout.
package scenarios
