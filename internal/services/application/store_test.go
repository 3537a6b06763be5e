// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir()+"/nested/resumes", 10)
	require.NoError(t, err)

	name, size, err := store.Save(strings.NewReader("hello"), ".PDF")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	p, err := store.Path(name)
	require.NoError(t, err)
	assert.FileExists(t, p)

	require.NoError(t, store.Remove(name))
	assert.NoFileExists(t, p)
}

func TestFileStore_ExactLimit(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 5)
	require.NoError(t, err)

	_, _, err = store.Save(strings.NewReader("12345"), ".pdf")
	assert.NoError(t, err)

	_, _, err = store.Save(strings.NewReader("123456"), ".pdf")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFileStore_PathRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 5)
	require.NoError(t, err)

	for _, name := range []string{"", "../etc/passwd", "a/b.pdf"} {
		_, err := store.Path(name)
		assert.Error(t, err, name)
	}
}
