package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSniff_KeepsWholeStream(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x01}, 5000)...)

	contentType, body, err := Sniff(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	var out bytes.Buffer
	_, err = out.ReadFrom(body)
	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())
}

func TestSniff_ShortInput(t *testing.T) {
	contentType, _, err := Sniff(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Contains(t, contentType, "text/plain")
}

func TestLocalStorage_StoreAndDelete(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base)
	require.NoError(t, err)

	ref, err := ls.Store(context.Background(), File{
		Name:        "photo.PNG",
		ContentType: "image/png",
		Body:        bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "products/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	stored, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, ls.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(base, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.Delete(context.Background(), ref))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "../etc/passwd", "/etc/passwd", "..", "products/../../x"} {
		assert.ErrorIs(t, ls.Delete(context.Background(), ref), ErrInvalidReference, ref)
	}
}
