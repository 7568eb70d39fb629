package orders

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Order numbers look like FE240822001: brand prefix, YYMMDD of the submission
// date, then a random numeric discriminator. The date keeps numbers sortable
// by creation day as a human convenience; uniqueness is guaranteed by the
// database constraint plus regenerate-on-conflict, not by the format itself.
const (
	baseDiscriminatorWidth = 3
	maxDiscriminatorWidth  = 9
)

// GenerateOrderNumber returns a candidate order number for the given
// submission time. The discriminator widens by one digit per retry attempt so
// repeated collisions on busy days resolve quickly.
func GenerateOrderNumber(prefix string, t time.Time, attempt int) string {
	width := baseDiscriminatorWidth + attempt
	if width > maxDiscriminatorWidth {
		width = maxDiscriminatorWidth
	}
	limit := int64(1)
	for i := 0; i < width; i++ {
		limit *= 10
	}
	return fmt.Sprintf("%s%s%0*d", prefix, t.UTC().Format("060102"), width, rand.Int64N(limit))
}
