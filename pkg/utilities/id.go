package utilities

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeMu sync.Mutex
	node   *snowflake.Node
)

// SetSnowflakeNode configures the node used by NewSnowflakeID. It is called once at
// startup; without it node 1 is used.
func SetSnowflakeNode(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IsKSUID reports whether s is a syntactically valid KSUID string.
func IsKSUID(s string) bool {
	_, err := ksuid.Parse(s)
	return err == nil
}

// NewSnowflakeID generates a snowflake ID string. If no node is configured it falls
// back to node 1, and if that cannot be initialized it returns a KSUID string so a
// unique ID is always produced.
func NewSnowflakeID() string {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	if node == nil {
		n, err := snowflake.NewNode(1)
		if err != nil {
			return NewKSUID()
		}
		node = n
	}
	return node.Generate().String()
}

// IsSnowflakeID reports whether s parses as a positive snowflake ID.
func IsSnowflakeID(s string) bool {
	id, err := snowflake.ParseString(s)
	return err == nil && id.Int64() > 0
}
