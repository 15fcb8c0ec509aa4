/*
Package annotate is a small interpreter whose nodes can be instrumented at run time.

Instrumentation lives in a side table rather than in the nodes: each node of a loaded
Program can be bound to an annotation carrying an alternate execution routine and an
owned payload. The executor consults the table before every node and runs the
annotation routine in its place; the routine may call through to the node's original
behavior. Removing a hook, replacing it or closing the interpreter releases the
payload exactly once.

# Usage

	interp, err := annotate.Load("countdown.yaml")
	if err != nil {
		log.Fatal(err)
	}
	defer interp.Close()

	counter, err := interp.Count("loop")
	if err != nil {
		log.Fatal(err)
	}

	if _, err := interp.Run(ctx, os.Stdout, nil); err != nil {
		log.Fatal(err)
	}
	fmt.Println("loop ran", counter.Load(), "times")

The annotation table itself is in package annotation and can be used with any
comparable node identity.
*/
package annotate
