// One-off: go run scripts/genhash.go [api-key]
//
// Prints an API key and the bcrypt hash to put in API_KEY_HASH. A random key is
// generated when none is given.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	key := ""
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		b := make([]byte, 24)
		if _, err := rand.Read(b); err != nil {
			panic(err)
		}
		key = hex.EncodeToString(b)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(key), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("X-Api-Key:    %s\nAPI_KEY_HASH: %s\n", key, h)
}
