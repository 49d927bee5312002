package v0

// afterMarkHook is a test-only seam invoked right after a node has been
// logically deleted at every level, before physical unlinking runs. It lets
// tests stall a "thread A" goroutine mid-release so concurrent find
// traversals are forced to help splice the marked node out (scenario 5,
// logical-deletion helping). Production code never sets it.
var afterMarkHook func(n *node)
