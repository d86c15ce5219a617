package utils

import (
	// Go Internal Packages
	"strconv"
	"strings"
)

// JoinInt64Slice renders ids as a comma separated list for log fields
func JoinInt64Slice(ints []int64) string {
	strs := make([]string, len(ints))
	for i, v := range ints {
		strs[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(strs, ",")
}
