package avatarsvc_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/mkrupp/storefront/internal/repo/blob"

	. "github.com/mkrupp/storefront/internal/svc/avatarsvc"
)

const testSize = 64

func setupTestService(t *testing.T) (*AvatarService, string) {
	t.Helper()

	basedir := t.TempDir()

	svc, err := NewAvatarService(
		context.Background(),
		blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: basedir}),
		AvatarConfig{Size: testSize, Interpolator: "catmullrom"},
	)
	require.NoError(t, err)

	return svc, basedir
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)

	return img
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()

	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func pngFiles(t *testing.T, dir string) []string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)

	return files
}

func TestNewAvatarService_InvalidConfig(t *testing.T) {
	t.Parallel()

	factory := blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: t.TempDir()})

	_, err := NewAvatarService(context.Background(), factory, AvatarConfig{Size: 10, Interpolator: "sinc"})
	require.ErrorIs(t, err, ErrUnknownInterpolator)

	_, err = NewAvatarService(context.Background(), factory, AvatarConfig{Size: 0, Interpolator: "bilinear"})
	require.Error(t, err)
}

func TestAvatarService_EnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, basedir := setupTestService(t)
	ctx := context.Background()

	path, err := svc.Ensure(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, svc.Path("bob"), path)

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	firstInfo, err := os.Stat(path)
	require.NoError(t, err)

	assert.Len(t, pngFiles(t, filepath.Join(basedir, "avatars", "users")), 1)
	assert.Len(t, pngFiles(t, filepath.Join(basedir, "avatars", "shared")), 1)

	again, err := svc.Ensure(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	secondInfo, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstInfo.ModTime(), secondInfo.ModTime())
}

func TestAvatarService_EnsureSharesPlaceholder(t *testing.T) {
	t.Parallel()

	svc, basedir := setupTestService(t)
	ctx := context.Background()

	for _, username := range []string{"alice", "bob", "../escape", ""} {
		_, err := svc.Ensure(ctx, username)
		require.NoError(t, err)
	}

	assert.Len(t, pngFiles(t, filepath.Join(basedir, "avatars", "users")), 4)
	assert.Len(t, pngFiles(t, filepath.Join(basedir, "avatars", "shared")), 1)

	for _, username := range []string{"../escape", ""} {
		assert.Equal(t, filepath.Join(basedir, "avatars", "users"), filepath.Dir(svc.Path(username)))
	}

	placeholder := readPNG(t, filepath.Join(basedir, "avatars", "shared", "placeholder.png"))
	assert.Equal(t, image.Rect(0, 0, testSize, testSize), placeholder.Bounds())
	assert.Equal(t, color.RGBA{R: 170, G: 170, B: 170, A: 255}, rgba(placeholder.At(1, 1)))
}

func TestAvatarService_EnsureMasksCorners(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	path, err := svc.Ensure(context.Background(), "carol")
	require.NoError(t, err)

	avatar := readPNG(t, path)
	assert.Equal(t, image.Rect(0, 0, testSize, testSize), avatar.Bounds())

	for _, corner := range []image.Point{{0, 0}, {testSize - 1, 0}, {0, testSize - 1}, {testSize - 1, testSize - 1}} {
		assert.Equal(t, uint8(0), rgba(avatar.At(corner.X, corner.Y)).A, "corner %v", corner)
	}

	assert.Equal(t, uint8(255), rgba(avatar.At(testSize/2, 2)).A)
}

func TestAvatarService_ReplaceDecodesFormats(t *testing.T) {
	t.Parallel()

	red := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := range 10 {
		for x := range 20 {
			red.Set(x, y, color.RGBA{R: 0xCC, A: 255})
		}
	}

	tests := []struct {
		name   string
		encode func(io.Writer, image.Image) error
	}{
		{"png", png.Encode},
		{"jpeg", func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 100}) }},
		{"gif", func(w io.Writer, i image.Image) error { return gif.Encode(w, i, nil) }},
		{"bmp", bmp.Encode},
		{"tiff", func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := setupTestService(t)

			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, red))

			source := filepath.Join(t.TempDir(), "source")
			require.NoError(t, os.WriteFile(source, buf.Bytes(), 0o600))

			path, err := svc.Replace(context.Background(), "dave", source)
			require.NoError(t, err)

			center := rgba(readPNG(t, path).At(testSize/2, testSize/2))
			assert.InDelta(t, 0xCC, int(center.R), 12)
			assert.InDelta(t, 0, int(center.G), 12)
			assert.Equal(t, uint8(255), center.A)
		})
	}
}

func TestAvatarService_ReplaceFallsBackToGrey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content []byte
	}{
		{"garbage", []byte("definitely not a picture")},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00")},
		{"missing file", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := setupTestService(t)
			ctx := context.Background()

			_, err := svc.Ensure(ctx, "erin")
			require.NoError(t, err)

			source := filepath.Join(t.TempDir(), "source")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(source, tt.content, 0o600))
			}

			path, err := svc.Replace(ctx, "erin", source)
			require.NoError(t, err)

			avatar := readPNG(t, path)
			assert.Equal(t, color.RGBA{R: 160, G: 160, B: 160, A: 255}, rgba(avatar.At(testSize/2, testSize/2)))
			assert.Equal(t, uint8(0), rgba(avatar.At(0, 0)).A)
		})
	}
}

func TestAvatarService_ReplaceRejectsLargeSource(t *testing.T) {
	t.Parallel()

	svc, err := NewAvatarService(
		context.Background(),
		blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: t.TempDir()}),
		AvatarConfig{Size: testSize, Interpolator: "nearestneighbor", MaxSourceSize: 16},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 50, 50))))
	require.Greater(t, buf.Len(), 16)

	source := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(source, buf.Bytes(), 0o600))

	path, err := svc.Replace(context.Background(), "frank", source)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 160, G: 160, B: 160, A: 255}, rgba(readPNG(t, path).At(testSize/2, testSize/2)))
}

func TestAvatarService_ReplaceRejectsManyPixels(t *testing.T) {
	t.Parallel()

	svc, err := NewAvatarService(
		context.Background(),
		blob.FileSystemBlobRepositoryFactory(blob.FileSystemBlobRepositoryConfig{Basedir: t.TempDir()}),
		AvatarConfig{Size: testSize, Interpolator: "nearestneighbor", MaxSourcePixels: 100},
	)
	require.NoError(t, err)

	red := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := range 50 {
		for x := range 50 {
			red.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, red))

	source := filepath.Join(t.TempDir(), "wide.png")
	require.NoError(t, os.WriteFile(source, buf.Bytes(), 0o600))

	path, err := svc.Replace(context.Background(), "gina", source)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 160, G: 160, B: 160, A: 255}, rgba(readPNG(t, path).At(testSize/2, testSize/2)))
}
