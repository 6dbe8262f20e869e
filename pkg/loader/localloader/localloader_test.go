package localloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tflens/modres/pkg/loader"
)

func TestMatchesAndLoad_RelativePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules", "vpc"), 0o755))

	l := New(root)

	rctx := &loader.ResolutionContext{}
	ref := loader.ModuleReference{Source: "./modules/vpc"}
	require.True(t, l.Matches(context.Background(), ref, rctx))

	res := l.Load(context.Background(), ref, rctx)
	require.True(t, res.OK())
	require.Equal(t, filepath.Join(root, "modules", "vpc"), res.Dir)
}

func TestMatches_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	l := New(t.TempDir())

	rctx := &loader.ResolutionContext{}
	require.True(t, l.Matches(context.Background(), loader.ModuleReference{Source: dir}, rctx))
	require.Equal(t, dir, rctx.DestDir)
}

func TestMatches_Declines(t *testing.T) {
	l := New(t.TempDir())

	tests := []string{
		"terraform-aws-modules/vpc/aws",
		"github.com/owner/repo",
		"./does/not/exist",
	}
	for _, source := range tests {
		t.Run(source, func(t *testing.T) {
			rctx := &loader.ResolutionContext{}
			require.False(t, l.Matches(context.Background(), loader.ModuleReference{Source: source}, rctx))
		})
	}
}
