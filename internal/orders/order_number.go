package orders

import (
	"fmt"
	"math/rand"
	"time"
)

const orderNumberLayout = "060102150405"

// newOrderNumber renders the timestamp followed by a three digit suffix, for
// example 260116143005-482.
func newOrderNumber(at time.Time) string {
	return fmt.Sprintf("%s-%03d", at.UTC().Format(orderNumberLayout), rand.Intn(1000))
}
