package utils

import (
	"math/rand"
	"time"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

func init() {
	rand.Seed(time.Now().UnixNano())
}

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// RemoveString returns a copy of hay without any occurrence of needle.
func RemoveString(hay []string, needle string) []string {
	res := []string{}
	for _, str := range hay {
		if str != needle {
			res = append(res, str)
		}
	}
	return res
}

// RandomAlphabetString returns a random lower case string of length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// RandomCounter returns a display only counter in [0, 1000).
func RandomCounter() int {
	return rand.Intn(1000)
}
