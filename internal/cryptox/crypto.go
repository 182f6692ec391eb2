// Package cryptox implements the cryptography the drive client consumes:
// metadata blob encryption keyed by the account master keys, per-file chunk
// encryption, and password-based master key derivation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// MetadataVersion prefixes every metadata blob this package produces.
const MetadataVersion = "002"

// ChunkVersion is the only chunk encryption scheme supported.
const ChunkVersion = 2

const keySize = 32

// DeriveMasterKey turns a password and salt into a 32-byte master key
// using argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// metadataKey stretches a master key into the AES key used for metadata.
func metadataKey(masterKey []byte) []byte {
	return pbkdf2.Key(masterKey, masterKey, 1, keySize, sha512.New)
}

func seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(blob, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(blob) < ns+aesgcm.Overhead() {
		return nil, common.ErrDecrypt
	}

	return aesgcm.Open(nil, blob[:ns], blob[ns:], nil)
}

// Provider decrypts metadata with the account master keys. Keys are kept in
// the order they were created; decryption tries the newest first.
type Provider struct {
	masterKeys [][]byte
}

// NewProvider builds a Provider. masterKeys are ordered oldest to newest;
// empty keys are ignored.
func NewProvider(masterKeys ...string) *Provider {
	p := &Provider{}
	for _, k := range masterKeys {
		if k == "" {
			continue
		}
		p.masterKeys = append(p.masterKeys, metadataKey([]byte(k)))
	}
	return p
}

// EncryptMetadata serializes v to JSON and seals it with the newest master
// key.
func (p *Provider) EncryptMetadata(v any) (string, error) {
	if len(p.masterKeys) == 0 {
		return "", common.ErrNotAuthenticated
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	sealed, err := seal(plaintext, p.masterKeys[len(p.masterKeys)-1])
	if err != nil {
		return "", err
	}

	return MetadataVersion + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptMetadata opens a metadata blob and returns its JSON plaintext.
func (p *Provider) DecryptMetadata(blob string) ([]byte, error) {
	body, ok := strings.CutPrefix(blob, MetadataVersion)
	if !ok {
		return nil, fmt.Errorf("%w: metadata %.3q", common.ErrUnsupportedVersion, blob)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecrypt, err)
	}

	for i := len(p.masterKeys) - 1; i >= 0; i-- {
		plaintext, err := open(raw, p.masterKeys[i])
		if err == nil {
			return plaintext, nil
		}
	}

	return nil, common.ErrDecrypt
}

// DecryptFolderName returns the folder name in blob. ok is false when no key
// opens it or the payload has no name.
func (p *Provider) DecryptFolderName(blob string) (name string, ok bool) {
	plaintext, err := p.DecryptMetadata(blob)
	if err != nil {
		return "", false
	}

	var md models.FolderMetadata
	if err := json.Unmarshal(plaintext, &md); err != nil || md.Name == "" {
		return "", false
	}
	return md.Name, true
}

// DecryptFileMetadata returns the file metadata in blob. ok is false when no
// key opens it or the payload lacks a name or key.
func (p *Provider) DecryptFileMetadata(blob string) (md models.FileMetadata, ok bool) {
	plaintext, err := p.DecryptMetadata(blob)
	if err != nil {
		return models.FileMetadata{}, false
	}

	if err := json.Unmarshal(plaintext, &md); err != nil || md.Name == "" || md.Key == "" {
		return models.FileMetadata{}, false
	}
	return md, true
}

// EncryptChunk seals one chunk with the file key.
func EncryptChunk(plaintext []byte, fileKey string) ([]byte, error) {
	if len(fileKey) != keySize {
		return nil, fmt.Errorf("file key must be %d bytes, got %d", keySize, len(fileKey))
	}
	return seal(plaintext, []byte(fileKey))
}

// DecryptChunk opens one chunk sealed with the given scheme version.
func DecryptChunk(blob []byte, fileKey string, version int) ([]byte, error) {
	if version != ChunkVersion {
		return nil, fmt.Errorf("%w: chunk version %d", common.ErrUnsupportedVersion, version)
	}
	if len(fileKey) != keySize {
		return nil, fmt.Errorf("%w: file key must be %d bytes", common.ErrDecrypt, keySize)
	}

	plaintext, err := open(blob, []byte(fileKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecrypt, err)
	}
	return plaintext, nil
}
