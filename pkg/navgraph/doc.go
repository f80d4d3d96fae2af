// Package navgraph builds a navigable platform graph from static 2D
// collision geometry: it extracts walkable top surfaces, places nodes
// along them, connects same-surface nodes with walk links, and indexes
// the nodes in a uniform grid for fast spatial queries.
package navgraph
