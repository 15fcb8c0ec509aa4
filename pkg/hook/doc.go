/*
Package hook installs instrumentation on individual program nodes.

Each installer binds an annotation to a node in a runtime.Table. The annotation routine
runs in place of the node; most installers save the node's original routine at install
time and call through to it, so the program behaves as before plus the hook's effect.

	table := interp.Hooks()
	counter, err := hook.Count(frame, table, node)
	...
	fmt.Println(counter.Load())
*/
package hook
