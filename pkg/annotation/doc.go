/*
Package annotation attaches data and an alternate execution routine to interpreter nodes
without touching the nodes themselves.

A Group is a side table keyed by node identity. Each binding is an Annotation holding a
Routine (run in place of the node's own execution), an owned payload and the Destructor
that releases it. The Group owns every Annotation: replacing, deleting or destroying a
binding runs the payload's destructor exactly once.

# Usage

	table := annotation.NewGroup[*domain.Node, *domain.Frame]()
	defer table.Destroy(frame)

	_, err := table.Set(frame, node, counter, releaseCounter,
		annotation.WithRoutine(countingRoutine),
	)

	// In the executor loop:
	if a, ok := table.Get(frame.Op); ok {
		next, err = a.Run(frame)
	}

# Node lifetime

The Group is never told when a node goes away. A node discarded by its owner leaves a
stale key behind; the Annotation stays unreachable until Delete or Destroy. A Group is
expected to live exactly as long as the node tree it describes.
*/
package annotation
