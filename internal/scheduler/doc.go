// Package scheduler implements the staged evaluation driver: a pollable
// state machine that hands out one wave of independent jobs at a time and
// accepts their results. How a wave's jobs actually run is entirely the
// caller's choice, which is what makes sequential, parallel, and distributed
// execution interchangeable over the same graph.
package scheduler
