package bank

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// IDProvider mints account numbers for newly added clients.
type IDProvider interface {
	NextAccountNumber() string
}

type idProvider struct {
	snowflakeNode *snowflake.Node
}

func NewIDProvider(nodeID int64) (IDProvider, error) {

	node, err := snowflake.NewNode(nodeID)

	if err != nil {
		return nil, fmt.Errorf("init snowflake node failed: %w", err)
	}

	return &idProvider{
		snowflakeNode: node,
	}, nil
}

// NextAccountNumber returns a "C"-prefixed base36 account number, the shape
// the legacy data files use for client keys.
func (i *idProvider) NextAccountNumber() string {
	return "C" + strings.ToUpper(i.snowflakeNode.Generate().Base36())
}
