package course

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	enrollKeyLen      = 6
	enrollKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	submissionPassLen      = 12
	submissionPassAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

func NewEnrollKey() (string, error) {
	return randomString(enrollKeyLen, enrollKeyAlphabet)
}

func NewSubmissionPass() (string, error) {
	return randomString(submissionPassLen, submissionPassAlphabet)
}
