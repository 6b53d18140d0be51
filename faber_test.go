package faber_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber"
	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/compiler/load"
	"github.com/syssam/faber/dialect/laravel"
)

const blogSchema = `
tables:
  - name: users
    columns:
      - name: id
        type: id
      - name: name
        type: string
    timestamps: true
  - name: posts
    columns:
      - name: id
        type: id
      - name: title
        type: string
      - name: user_id
        type: unsignedInteger
        foreign:
          table: users
    timestamps: true
`

func TestGenerate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogSchema), 0o644))

	sink := gen.NewMemSink()
	report, err := faber.Generate(path,
		gen.WithDialect(laravel.New()),
		gen.WithSink(sink),
	)
	require.NoError(t, err)
	require.False(t, report.Failed())
	assert.Equal(t, 2, report.Tables)
	assert.NotEmpty(t, report.Written)
	require.NoError(t, faber.NewBuildError(report))
}

func TestGenerateBytes(t *testing.T) {
	t.Parallel()

	src := []byte("table: tags name|string, slug|string|unique\n")
	report, err := faber.GenerateBytes(src,
		gen.WithDialect(laravel.New()),
		gen.WithSink(gen.NewMemSink()),
	)
	require.NoError(t, err)
	require.False(t, report.Failed())
	assert.Equal(t, 1, report.Tables)
}

func TestGenerateParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables: {broken\n"), 0o644))

	_, err := faber.Generate(path,
		gen.WithDialect(laravel.New()),
		gen.WithSink(gen.NewMemSink()),
	)
	require.Error(t, err)
	assert.True(t, load.IsParseError(err))
	assert.False(t, faber.IsNotFound(err))
	assert.Contains(t, err.Error(), path)
}

func TestGenerateMissingSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gone.yaml")
	_, err := faber.Generate(path,
		gen.WithDialect(laravel.New()),
		gen.WithSink(gen.NewMemSink()),
	)
	require.Error(t, err)
	assert.True(t, faber.IsNotFound(err))
	assert.Contains(t, err.Error(), path)
	require.NoError(t, faber.MaskNotFound(err))

	other := errors.New("not a missing source")
	assert.Same(t, other, faber.MaskNotFound(other))
}

func TestBuildError(t *testing.T) {
	t.Parallel()

	emit := gen.NewEmitError("posts", gen.KindModel, "render exploded", nil)
	report := &gen.Report{
		Failures: []*gen.Failure{
			{Table: "posts", Err: emit},
			{Table: "posts", Err: errors.New("second strike")},
			{Err: errors.New("registry merge lost its markers")},
		},
	}

	err := faber.NewBuildError(report)
	require.Error(t, err)
	assert.True(t, faber.IsBuildError(err))
	assert.True(t, errors.Is(err, faber.ErrFailed))
	assert.True(t, gen.IsEmitError(err), "unwrapping reaches the emit error")

	var buildErr *faber.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, []string{"posts"}, buildErr.Tables())
	assert.Contains(t, err.Error(), "3 failure(s)")
	assert.Contains(t, err.Error(), "[1] table posts")
	assert.Contains(t, err.Error(), "[3] registry merge lost its markers")
}

func TestNewBuildErrorClean(t *testing.T) {
	t.Parallel()

	require.NoError(t, faber.NewBuildError(nil))
	require.NoError(t, faber.NewBuildError(&gen.Report{Tables: 3}))
	assert.False(t, faber.IsBuildError(errors.New("plain")))
}
