// Package pipeline runs the stages of an airscrape run in sequence.
//
// A run moves strictly forward: robots check, download, consolidation,
// save, load, analysis, signals and finally the run history record. Each
// stage is a Step that receives the *model.Run and fills in its part.
// Nothing runs concurrently; context cancellation is checked between steps
// and inside the steps that block.
package pipeline
