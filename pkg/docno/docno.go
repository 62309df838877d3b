// Package docno generates human readable warehouse document numbers.
package docno

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixGoodsIn  = "BM"
	PrefixGoodsOut = "BK"
)

// New returns PREFIX-YYYYMMDD-XXXXXXXX where the suffix comes from a random uuid.
func New(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + at.UTC().Format("20060102") + "-" + suffix
}
