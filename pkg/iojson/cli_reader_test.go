package iojson

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type payload struct {
	Name string `json:"name"`
}

func runReader[T any](t *testing.T, fr *FileReader[T], args ...string) (T, error) {
	t.Helper()

	var (
		got T
		err error
	)
	app := &cli.Command{
		Name:  "test",
		Flags: fr.Flags(),
		Action: func(context.Context, *cli.Command) error {
			got, err = fr.Read()
			return nil
		},
	}
	require.NoError(t, app.Run(context.Background(), append([]string{"test"}, args...)))
	return got, err
}

func TestFileReader_Data(t *testing.T) {
	fr := &FileReader[payload]{}
	got, err := runReader(t, fr, "--data", `{"name":"ana"}`)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Name)
}

func TestFileReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"luis"}`), 0o644))

	fr := &FileReader[payload]{}
	got, err := runReader(t, fr, "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "luis", got.Name)
}

func TestFileReader_Input(t *testing.T) {
	fr := &FileReader[json.RawMessage]{}
	fr.SetInput(strings.NewReader(`{"a":1}`))

	got, err := runReader(t, fr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestFileReader_Empty(t *testing.T) {
	fr := &FileReader[json.RawMessage]{}
	fr.SetInput(strings.NewReader("  \n"))
	_, err := runReader(t, fr)
	require.Error(t, err)

	optional := &FileReader[json.RawMessage]{Optional: true}
	optional.SetInput(strings.NewReader(""))
	got, err := runReader(t, optional)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileReader_Errors(t *testing.T) {
	fr := &FileReader[payload]{}
	_, err := runReader(t, fr, "--data", `{"name":`)
	require.Error(t, err)

	fr = &FileReader[payload]{}
	_, err = runReader(t, fr, "--data", `{}`, "--file", "x.json")
	require.ErrorContains(t, err, "mutually exclusive")

	fr = &FileReader[payload]{}
	_, err = runReader(t, fr, "--file", filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "open file")
}
