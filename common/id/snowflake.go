package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator produces globally unique int64 IDs using the Snowflake algorithm.
// IDs are time-ordered and unique across distributed instances.
//
// Generators are constructed and injected rather than kept as package state,
// so each owner (session manager, store layer) carries its own handle.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a Generator for the given node ID (0-1023).
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("creating snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// New generates a new ID.
func (g *Generator) New() int64 {
	return g.node.Generate().Int64()
}
