// Package vault sella campos sensibles antes de persistirlos. El esquema
// viejo de "base64 y listo" quedó reemplazado por cifrado autenticado; la
// interfaz permite enchufar otra implementación (KMS, HSM) sin tocar los
// servicios.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var ErrInvalidCiphertext = errors.New("ciphertext inválido o alterado")

// Sealer cifra (Seal) y descifra (Open) un valor sensible.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// AESSealer implementa Sealer con AES-256-GCM. La clave se deriva por SHA-256
// del secreto de configuración; el nonce viaja como prefijo del ciphertext.
type AESSealer struct {
	key [32]byte
}

func NewAESSealer(secret string) (*AESSealer, error) {
	if secret == "" {
		return nil, errors.New("ENCRYPTION_KEY vacía: configurar un secreto")
	}
	return &AESSealer{key: sha256.Sum256([]byte(secret))}, nil
}

func (s *AESSealer) Seal(plaintext string) (string, error) {
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *AESSealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, ct := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

func (s *AESSealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
