package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateOrderID builds a local order identifier from the current time plus
// a random suffix. Uniqueness is best effort; the orders table carries a
// unique index as the backstop.
func GenerateOrderID() string {
	mu.Lock()
	defer mu.Unlock()

	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[seededRand.Intn(len(orderIDAlphabet))]
	}

	return fmt.Sprintf("ORD_%d_%s", time.Now().UnixMilli(), string(suffix))
}
