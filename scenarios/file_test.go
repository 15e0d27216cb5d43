package scenarios

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestJSONFileStore_ReadErrorsAreRecovered(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		s := NewJSONFileStore(filepath.Join(t.TempDir(), "nera.json"), zap.New(core))

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, loadErr := s.load()
		assert.True(t, errors.Is(loadErr, fs.ErrNotExist))
		assert.Equal(t, 1, logs.FilterMessage("Файл сценариев отсутствует").Len())
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenarios.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		core, logs := observer.New(zap.DebugLevel)
		s := NewJSONFileStore(path, zap.New(core))

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, loadErr := s.load()
		var corrupt *CorruptFileError
		require.ErrorAs(t, loadErr, &corrupt)
		assert.Equal(t, path, corrupt.Path)
		assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
	})

	t.Run("upsert replaces a corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenarios.json")
		require.NoError(t, os.WriteFile(path, []byte("[[["), 0o644))

		s := NewJSONFileStore(path, nil)
		require.NoError(t, s.Upsert(ctx, "Naujas", Payload{"stresas": 2.0}))

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Naujas"}, names(items))
	})

	t.Run("bad entry is skipped, others survive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenarios.json")
		content := `[{"name":"A","payload":{"stresas":2}},{"name":"B","payload":"x"},{"name":"D"}]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		core, logs := observer.New(zap.DebugLevel)
		s := NewJSONFileStore(path, zap.New(core))

		items, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "D"}, names(items))
		assert.Equal(t, Payload{"stresas": 2.0}, items[0].Payload)
		assert.Equal(t, Payload{}, items[1].Payload)
		assert.Equal(t, 1, logs.FilterMessage("Пропущена повреждённая запись файла сценариев").Len())

		require.NoError(t, s.Upsert(ctx, "C", nil))
		items, err = s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "D", "C"}, names(items))
	})

	t.Run("json null means empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenarios.json")
		require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

		items, err := NewJSONFileStore(path, nil).List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestJSONFileStore_FileLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "scenarios.json")
	s := NewJSONFileStore(path, nil)

	require.NoError(t, s.Reset(ctx, Defaults()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	// Человекочитаемый формат: отступы и буквы без экранирования
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"name\": "))
	assert.Contains(t, text, "Puikiai pailsėjęs")
	assert.NotContains(t, text, `\u`)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 3)
	assert.Contains(t, decoded[0], "name")
	assert.Contains(t, decoded[0], "payload")
}

func TestJSONFileStore_DeleteRewritesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scenarios.json")
	s := NewJSONFileStore(path, nil)

	require.NoError(t, s.Delete(ctx, "bet kas"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestArchive(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := EncodeArchive(Defaults())
		require.NoError(t, err)

		items, err := DecodeArchive(data)
		require.NoError(t, err)
		assert.Equal(t, Defaults(), items)
	})

	t.Run("nil encodes as empty list", func(t *testing.T) {
		data, err := EncodeArchive(nil)
		require.NoError(t, err)

		items, err := DecodeArchive(data)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := DecodeArchive([]byte("definitely not snappy"))
		assert.Error(t, err)
	})
}
