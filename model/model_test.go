package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/ar-hunt/scene"
)

const chestPath = "../asset/models/chest.gltf"

func TestLoad_Chest(t *testing.T) {
	root, err := Load(chestPath)
	require.NoError(t, err)

	assert.Equal(t, "Chest", root.Name)
	require.Len(t, root.Children, 2)

	body := root.Find("Body")
	require.NotNil(t, body)
	require.NotNil(t, body.Mesh)
	assert.Equal(t, scene.ShapeBox, body.Mesh.Shape)
	assert.InDelta(t, 0.4, body.Mesh.Size.X(), 1e-6)
	assert.InDelta(t, 0.15, body.Mesh.Size.Y(), 1e-6)
	assert.InDelta(t, 0.075, body.Position.Y(), 1e-6)

	lid := root.Find("Lid")
	require.NotNil(t, lid)
	assert.Equal(t, scene.Color(0xffd600), lid.Mesh.Color)
	assert.Nil(t, lid.Orientation, "identity rotation is not stored")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gltf"))
	assert.Error(t, err)
}

func TestLoad_EmptyScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gltf")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"version":"2.0"}}`), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyModel)
}

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.gltf")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"version":"2.0"},`+body+`}`), 0o644))
	return path
}

func TestLoad_NullEntries(t *testing.T) {
	const bounds = `{"componentType":5126,"count":8,"type":"VEC3","min":[-1,-1,-1],"max":[1,1,1]}`
	tests := []struct {
		name string
		body string
	}{
		{"scene", `"scenes":[null]`},
		{"node", `"scenes":[{"nodes":[0]}],"nodes":[null]`},
		{"child", `"scenes":[{"nodes":[0]}],"nodes":[{"children":[1]},null]`},
		{"mesh", `"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],"meshes":[null]`},
		{"primitive", `"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],"meshes":[{"primitives":[null]}]`},
		{"accessor", `"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],"accessors":[null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = Load(writeModel(t, tt.body)) })
			assert.ErrorIs(t, err, ErrMalformedModel)
		})
	}

	t.Run("material", func(t *testing.T) {
		path := writeModel(t, `"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],`+
			`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"material":0}]}],`+
			`"accessors":[`+bounds+`],"materials":[null]`)
		root, err := Load(path)
		require.NoError(t, err)
		require.NotNil(t, root.Mesh)
		assert.Equal(t, defaultModelColor, root.Mesh.Color, "null material falls back to the default color")
	})
}

func pollUntil(t *testing.T, c *Cache, n int) []Result {
	t.Helper()
	var got []Result
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, c.Poll()...)
		time.Sleep(time.Millisecond)
	}
	require.Len(t, got, n)
	return got
}

func TestCache_LoadsInBackground(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	c := NewCache(func(ctx context.Context, path string) (*scene.Node, error) {
		calls++
		<-release
		return scene.NewMeshNode("m", scene.Box(1, 1, 1, 0), mgl32.Vec3{}), nil
	}, zerolog.Nop())

	ctx := context.Background()
	c.Request(ctx, "a.gltf")
	c.Request(ctx, "a.gltf")

	// Loop keeps running while the load is blocked
	assert.Empty(t, c.Poll())
	assert.Equal(t, StatePending, c.State("a.gltf"))
	_, err := c.Instance("a.gltf")
	assert.ErrorIs(t, err, ErrNotReady)

	close(release)
	pollUntil(t, c, 1)

	assert.Equal(t, StateReady, c.State("a.gltf"))
	a, err := c.Instance("a.gltf")
	require.NoError(t, err)
	b, err := c.Instance("a.gltf")
	require.NoError(t, err)
	assert.NotSame(t, a, b, "every instance is a clone")
	assert.Equal(t, 1, calls, "duplicate requests share one load")
	c.Wait()
}

func TestCache_Failure(t *testing.T) {
	boom := errors.New("boom")
	c := NewCache(func(context.Context, string) (*scene.Node, error) { return nil, boom }, zerolog.Nop())
	c.Request(context.Background(), "bad.gltf")

	res := pollUntil(t, c, 1)
	assert.ErrorIs(t, res[0].Err, boom)
	assert.Equal(t, StateFailed, c.State("bad.gltf"))
	_, err := c.Instance("bad.gltf")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUnknown, c.State("other.gltf"))
}

func TestCache_CancelledContextReleasesLoaders(t *testing.T) {
	c := NewCache(func(context.Context, string) (*scene.Node, error) {
		return scene.NewGroup("g"), nil
	}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	// More requests than the result buffer holds, never polled
	for i := 0; i < 40; i++ {
		c.Request(ctx, fmt.Sprintf("m%d.gltf", i))
	}
	cancel()

	done := make(chan struct{})
	go func() { c.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loaders did not exit after cancel")
	}
}

func TestCache_DefaultLoader(t *testing.T) {
	c := NewCache(nil, zerolog.Nop())
	c.Request(context.Background(), chestPath)
	pollUntil(t, c, 1)
	n, err := c.Instance(chestPath)
	require.NoError(t, err)
	assert.NotNil(t, n.Find("Lid"))
}

func TestCache_LoaderPanicBecomesFailure(t *testing.T) {
	c := NewCache(func(context.Context, string) (*scene.Node, error) {
		panic("corrupt buffer view")
	}, zerolog.Nop())
	c.Request(context.Background(), "broken.gltf")

	res := pollUntil(t, c, 1)
	assert.ErrorIs(t, res[0].Err, ErrMalformedModel)
	assert.Equal(t, StateFailed, c.State("broken.gltf"))
	c.Wait()
}

func TestCache_NullNodeDocumentFails(t *testing.T) {
	path := writeModel(t, `"scenes":[{"nodes":[0]}],"nodes":[null]`)
	c := NewCache(nil, zerolog.Nop())
	c.Request(context.Background(), path)

	res := pollUntil(t, c, 1)
	assert.ErrorIs(t, res[0].Err, ErrMalformedModel)
	_, err := c.Instance(path)
	assert.Error(t, err)
}
