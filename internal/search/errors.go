package search

import "errors"

// ErrHeuristicStall is logged when a bounded expansion loop hits its cap.
// The search recovers by keeping the block it had; Result.Stalled is set.
var ErrHeuristicStall = errors.New("search heuristic stalled")
