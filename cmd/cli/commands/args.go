package commands

import (
	"fmt"
	"strconv"
)

// parseID parses a positive database ID argument
func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got: %s", name, arg)
	}
	return id, nil
}
