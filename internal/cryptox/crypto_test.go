package cryptox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fileKey = "0123456789abcdef0123456789abcdef"

func TestDeriveMasterKey(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-1"))
	key3 := DeriveMasterKey(password, []byte("salt-2"))

	require.Len(t, key1, 32)
	assert.True(t, bytes.Equal(key1, key2), "same inputs must give same key")
	assert.False(t, bytes.Equal(key1, key3), "different salts must give different keys")
}

func TestProvider_FileMetadataRoundTrip(t *testing.T) {
	p := NewProvider("old-key", "new-key")
	want := models.FileMetadata{Name: "a.txt", Size: 42, Mime: "text/plain", Key: fileKey, LastModified: 1_700_000_000_000}

	blob, err := p.EncryptMetadata(want)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(blob, MetadataVersion))

	got, ok := p.DecryptFileMetadata(blob)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestProvider_TriesOlderKeys(t *testing.T) {
	old := NewProvider("old-key")
	blob, err := old.EncryptMetadata(models.FolderMetadata{Name: "Photos"})
	require.NoError(t, err)

	rotated := NewProvider("old-key", "new-key")
	name, ok := rotated.DecryptFolderName(blob)
	require.True(t, ok)
	assert.Equal(t, "Photos", name)
}

func TestProvider_DecryptFailuresAreAbsent(t *testing.T) {
	p := NewProvider("k1")
	other := NewProvider("k2")

	blob, err := other.EncryptMetadata(models.FolderMetadata{Name: "x"})
	require.NoError(t, err)

	tests := []struct {
		name string
		blob string
	}{
		{"wrong key", blob},
		{"no version", "hello"},
		{"bad base64", MetadataVersion + "!!!"},
		{"too short", MetadataVersion + "AAAA"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := p.DecryptFolderName(tt.blob)
			assert.False(t, ok)
			_, ok = p.DecryptFileMetadata(tt.blob)
			assert.False(t, ok)
		})
	}
}

func TestProvider_FileMetadataWithoutKeyIsAbsent(t *testing.T) {
	p := NewProvider("k1")
	blob, err := p.EncryptMetadata(models.FileMetadata{Name: "a.txt"})
	require.NoError(t, err)

	_, ok := p.DecryptFileMetadata(blob)
	assert.False(t, ok)
}

func TestProvider_NoKeys(t *testing.T) {
	_, err := NewProvider().EncryptMetadata(models.FolderMetadata{Name: "x"})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestChunkRoundTrip(t *testing.T) {
	plain := []byte("chunk payload")

	sealed, err := EncryptChunk(plain, fileKey)
	require.NoError(t, err)

	got, err := DecryptChunk(sealed, fileKey, ChunkVersion)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = DecryptChunk(sealed, fileKey, 1)
	require.ErrorIs(t, err, common.ErrUnsupportedVersion)

	_, err = DecryptChunk(sealed, "fedcba9876543210fedcba9876543210", ChunkVersion)
	require.ErrorIs(t, err, common.ErrDecrypt)

	_, err = DecryptChunk(sealed[:5], fileKey, ChunkVersion)
	require.ErrorIs(t, err, common.ErrDecrypt)

	_, err = EncryptChunk(plain, "short")
	require.Error(t, err)
}
