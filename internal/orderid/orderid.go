package orderid

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const prefix = "ORD-"

// Generator issues order IDs that are unique and increasing for a node.
type Generator struct {
	node *snowflake.Node
}

// New creates a generator for the given terminal node (0-1023).
func New(node int64) (*Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Generator{node: n}, nil
}

func (g *Generator) Next() string {
	return prefix + g.node.Generate().String()
}
