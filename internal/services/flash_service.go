package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
)

// FlashService seals notifications into cookie values
type FlashService struct {
	encryptionKey []byte
}

// NewFlashService derives the sealing key from secret. An empty secret
// generates an ephemeral key, so pending notifications are lost on restart.
func NewFlashService(secret string) *FlashService {
	if secret == "" {
		newKey := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, newKey); err != nil {
			panic("failed to generate random key")
		}
		return &FlashService{encryptionKey: newKey}
	}
	sum := sha256.Sum256([]byte(secret))
	return &FlashService{encryptionKey: sum[:]}
}

func (s *FlashService) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal serializes and encrypts a notification into a string (for the cookie)
func (s *FlashService) Seal(n Notification) (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}

	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Open decodes the cookie value back into a Notification
func (s *FlashService) Open(sealed string) (*Notification, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, err
	}

	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("malformed ciphertext")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var n Notification
	if err := json.Unmarshal(plaintext, &n); err != nil {
		return nil, err
	}
	switch n.Severity {
	case SeveritySuccess, SeverityWarning, SeverityDanger:
	default:
		return nil, errors.New("unknown severity")
	}

	return &n, nil
}
