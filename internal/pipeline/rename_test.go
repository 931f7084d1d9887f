package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/identity"
)

// stubExtractor returns a canned identity per path base name.
type stubExtractor struct {
	byName map[string]identity.Identity
}

func (s *stubExtractor) Extract(_ context.Context, path string) identity.Identity {
	return s.byName[filepath.Base(path)]
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestCollectNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.jpg")
	writeFile(t, dir, "a.png")
	writeFile(t, dir, "notes.txt")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "c.jpg")

	files, err := Collect(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg")}, files)
}

func TestCollectRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.JPG")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "deep.bmp")
	writeFile(t, sub, "skip.tiff")

	files, err := Collect(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "deep.bmp"), filepath.Join(dir, "top.JPG")}, files)
}

func TestResolverSuffixesWithinBatch(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()

	first := r.Resolve(filepath.Join(dir, "a.jpg"), dir, "张伟_20230101", ".jpg")
	second := r.Resolve(filepath.Join(dir, "b.jpg"), dir, "张伟_20230101", ".jpg")
	third := r.Resolve(filepath.Join(dir, "c.jpg"), dir, "张伟_20230101", ".jpg")

	assert.Equal(t, filepath.Join(dir, "张伟_20230101.jpg"), first)
	assert.Equal(t, filepath.Join(dir, "张伟_20230101_1.jpg"), second)
	assert.Equal(t, filepath.Join(dir, "张伟_20230101_2.jpg"), third)
}

func TestResolverSkipsExistingOnDisk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "刘猛_20250428.jpg")
	r := NewResolver()

	got := r.Resolve(filepath.Join(dir, "other.jpg"), dir, "刘猛_20250428", ".jpg")
	assert.Equal(t, filepath.Join(dir, "刘猛_20250428_1.jpg"), got)
}

func TestResolverSourceKeepsOwnName(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "刘猛_20250428.jpg")
	r := NewResolver()

	got := r.Resolve(source, dir, "刘猛_20250428", ".jpg")
	assert.Equal(t, source, got)
}

func TestResolverConcurrentUniqueness(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()

	const n = 32
	targets := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			source := filepath.Join(dir, "src", string(rune('a'+i))+".jpg")
			targets[i] = r.Resolve(source, dir, "王芳_20240601", ".jpg")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, tgt := range targets {
		assert.False(t, seen[tgt], "duplicate target %s", tgt)
		seen[tgt] = true
	}
}

func TestRenameOneAlreadyCanonical(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "刘猛_20250428.jpg")
	ex := &stubExtractor{byName: map[string]identity.Identity{
		"刘猛_20250428.jpg": {Name: "刘猛", Date: "20250428"},
	}}
	rn := NewRenamer(ex, zap.NewNop())

	out := rn.RenameOne(context.Background(), filepath.Join(dir, "刘猛_20250428.jpg"), true)
	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, "刘猛_20250428.jpg", out.OriginalName)
	assert.Equal(t, "刘猛_20250428.jpg", out.NewName)
}

func TestRenameOneIncompleteIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan001.jpg")
	ex := &stubExtractor{byName: map[string]identity.Identity{}}
	rn := NewRenamer(ex, zap.NewNop())

	out := rn.RenameOne(context.Background(), path, true)
	assert.Equal(t, StatusError, out.Status)
	assert.Equal(t, ErrIdentityIncomplete.Error(), out.Error)
	assert.Empty(t, out.NewName)

	// The file must be untouched on failure.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRenameOneSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "raw.jpg")
	ex := &stubExtractor{byName: map[string]identity.Identity{
		"raw.jpg": {Name: `李:雷?`, Date: "20240115"},
	}}
	rn := NewRenamer(ex, zap.NewNop())

	out := rn.RenameOne(context.Background(), path, true)
	require.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, "李雷_20240115.jpg", out.NewName)
	_, err := os.Stat(filepath.Join(dir, "李雷_20240115.jpg"))
	assert.NoError(t, err)
}

func TestRenameTwoFilesSameIdentity(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jpg")
	b := writeFile(t, dir, "b.jpg")
	id := identity.Identity{Name: "张伟", Date: "20230101"}
	ex := &stubExtractor{byName: map[string]identity.Identity{"a.jpg": id, "b.jpg": id}}
	rn := NewRenamer(ex, zap.NewNop())

	first := rn.RenameOne(context.Background(), a, true)
	second := rn.RenameOne(context.Background(), b, true)

	require.Equal(t, StatusSuccess, first.Status)
	require.Equal(t, StatusSuccess, second.Status)
	assert.Equal(t, "张伟_20230101.jpg", first.NewName)
	assert.Equal(t, "张伟_20230101_1.jpg", second.NewName)
	_, err := os.Stat(filepath.Join(dir, "张伟_20230101.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "张伟_20230101_1.jpg"))
	assert.NoError(t, err)
}

func TestOrchestratorFolderDoesNotExist(t *testing.T) {
	o := NewOrchestrator(&stubExtractor{}, 2, zap.NewNop())

	res := o.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "folder does not exist")
	assert.NotEmpty(t, res.BatchID)
}

func TestOrchestratorPathIsAFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.jpg")
	o := NewOrchestrator(&stubExtractor{}, 2, zap.NewNop())

	res := o.Run(context.Background(), path, DefaultOptions())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not a folder")
}

func TestOrchestratorEmptyFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.txt")
	o := NewOrchestrator(&stubExtractor{}, 2, zap.NewNop())

	res := o.Run(context.Background(), dir, DefaultOptions())
	assert.False(t, res.Success)
	assert.Equal(t, "no supported image files found in folder", res.Error)
}

func TestOrchestratorCountsAndOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"c.jpg", "a.jpg", "e.jpg", "b.jpg", "d.jpg"}
	byName := make(map[string]identity.Identity, len(names))
	for i, n := range names {
		writeFile(t, dir, n)
		if n == "d.jpg" {
			continue // left without an identity so its rename fails
		}
		byName[n] = identity.Identity{Name: "患者" + string(rune('A'+i)), Date: "20240101"}
	}
	o := NewOrchestrator(&stubExtractor{byName: byName}, 4, zap.NewNop())

	res := o.Run(context.Background(), dir, DefaultOptions())
	require.True(t, res.Success)
	assert.Equal(t, 5, res.TotalFiles)
	assert.Equal(t, 4, res.SuccessFiles)
	assert.Equal(t, 1, res.ErrorFiles)
	require.Len(t, res.Files, 5)

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for i, want := range sorted {
		assert.Equal(t, want, res.Files[i].OriginalName)
	}
	for _, f := range res.Files {
		if f.OriginalName == "d.jpg" {
			assert.Equal(t, StatusError, f.Status)
		} else {
			assert.Equal(t, StatusSuccess, f.Status)
		}
	}
}
