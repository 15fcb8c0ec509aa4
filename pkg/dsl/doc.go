/*
Package dsl provides a fluent Go builder for annotate programs.

It is an alternative to YAML program files, useful for tests and for generating programs
on the fly. Nodes are kept in the order they are added; a node without an explicit Go
falls through to the next one.

Example usage:

	b := dsl.New("countdown")
	b.Add("init").Set("n", 3)
	b.Add("loop").Print("n")
	b.Add("dec").Add("n", -1)
	b.Add("again").JumpNonZero("n", "loop")
	b.Add("done").Text("liftoff")

	prog, err := b.Build()
*/
package dsl
