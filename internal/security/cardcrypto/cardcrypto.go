// Package cardcrypto generates card numbers and protects them at rest with
// AES-CBC under a key derived from a process-wide password and salt.
package cardcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// CardNumberLength is the full length of a generated card number.
	CardNumberLength = 16

	keyIterations = 4096
	keyLength     = 32
)

var binPattern = regexp.MustCompile(`^\d{6}$`)

// GenerateNumber produces a 16-digit numeric card number. When bin is a valid
// 6-digit prefix it seeds the number; otherwise all digits are random.
func GenerateNumber(bin string) (string, error) {
	var b strings.Builder
	if binPattern.MatchString(bin) {
		b.WriteString(bin)
	}

	digits := make([]byte, CardNumberLength-b.Len())
	if _, err := rand.Read(digits); err != nil {
		return "", fmt.Errorf("generate card number: %w", err)
	}
	for _, d := range digits {
		b.WriteByte(d%10 + '0')
	}
	return b.String(), nil
}

// ValidNumber reports whether s is a well-formed 16-digit card number.
func ValidNumber(s string) bool {
	if len(s) != CardNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Mask renders the display form of a card from its last four digits.
func Mask(lastFour string) string {
	return "**** **** **** " + lastFour
}

// Encryptor is the reversible at-rest cipher for full card numbers.
type Encryptor struct {
	key []byte
}

// NewEncryptor derives the AES key from password and salt via PBKDF2-SHA256.
func NewEncryptor(password, salt string) *Encryptor {
	key := pbkdf2.Key([]byte(password), []byte(salt), keyIterations, keyLength, sha256.New)
	return &Encryptor{key: key}
}

// Encrypt encrypts plaintext with AES-CBC and PKCS#7 padding, prepending a
// random IV, and returns the hex encoding.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("encrypt: input is empty")
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("encrypt: generate iv: %w", err)
	}

	data := []byte(plaintext)
	padding := aes.BlockSize - len(data)%aes.BlockSize
	for i := 0; i < padding; i++ {
		data = append(data, byte(padding))
	}

	ciphertext := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, data)

	return hex.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decrypt: decode hex: %w", err)
	}
	if len(raw) < aes.BlockSize {
		return "", fmt.Errorf("decrypt: ciphertext too short: %d bytes", len(raw))
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("decrypt: invalid ciphertext length: %d bytes", len(ciphertext))
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(plaintext) {
		return "", fmt.Errorf("decrypt: invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("decrypt: invalid padding byte at %d", i)
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}
