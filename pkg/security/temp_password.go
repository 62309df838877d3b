package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// tempAlphabet omits look-alike characters (0/O, 1/l/I) because admins read
// generated passwords out to warehouse staff.
const (
	tempLetters  = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	tempDigits   = "23456789"
	tempAlphabet = tempLetters + tempDigits
)

// MinTempPasswordLength is the shortest length that can hold both a letter and a digit.
const MinTempPasswordLength = 2

// GenerateTempPassword returns a random password containing at least one
// letter and one digit.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}
	if length < MinTempPasswordLength {
		return "", errors.New("length too short for a temporary password")
	}

	for {
		var b strings.Builder
		b.Grow(length)
		for i := 0; i < length; i++ {
			c, err := pick(tempAlphabet)
			if err != nil {
				return "", err
			}
			b.WriteByte(c)
		}
		pw := b.String()
		if strings.ContainsAny(pw, tempDigits) && strings.ContainsAny(pw, tempLetters) {
			return pw, nil
		}
	}
}

func pick(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
