package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Prize wallet secrets are stored as hex(iv):hex(ciphertext),
// AES-256-CBC under WALLET_ENCRYPTION_KEY (64 hex chars). The cipher
// is confidentiality-only; the stored envelope format is a fixed
// contract with existing data.

func encryptionKey() ([]byte, error) {
	raw := os.Getenv("WALLET_ENCRYPTION_KEY")
	if raw == "" {
		return nil, fmt.Errorf("WALLET_ENCRYPTION_KEY is not set")
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("WALLET_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("WALLET_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// CheckKey validates the configured encryption key at startup so a
// misconfiguration fails loudly instead of on the first reveal.
func CheckKey() error {
	_, err := encryptionKey()
	return err
}

// Generate creates a fresh prize keypair. Funds are not moved here;
// the wallet stays empty until approval-time funding.
func Generate() (pubkey string, secret string) {
	w := solana.NewWallet()
	return w.PublicKey().String(), w.PrivateKey.String()
}

// Store encrypts a wallet secret with a fresh random IV.
func Store(secret string) (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	plaintext := pkcs7Pad([]byte(secret), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Reveal decrypts a stored envelope. Any malformation is a hard error;
// there is no partial reveal.
func Reveal(envelope string) (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	parts := strings.SplitN(envelope, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed secret envelope")
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("malformed iv in secret envelope")
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("malformed ciphertext in secret envelope")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
