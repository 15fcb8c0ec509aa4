/*
Package domain contains the core types of the annotate interpreter.

It defines the executable program tree and the ambient execution context that node
routines receive. The package is kept free of I/O and persistence.

# Key Entities

  - Node: one executable step. Its identity is its pointer; Next and Target are resolved
    links to other nodes of the same Program.
  - Program: the owned set of Nodes plus the entry point.
  - Frame: the ambient context of a run (current node, variables, output).
  - ExecFunc: the per-node execution contract shared by a node's own routine and any
    annotation routine installed in its place.
*/
package domain
