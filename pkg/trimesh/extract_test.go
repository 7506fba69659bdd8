package trimesh

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenemesh/pkg/math"
	"github.com/Faultbox/scenemesh/pkg/scene"
)

// soup builds a shape node holding k copies of the same triangle.
func soup(name string, k int) *scene.Node {
	verts := make([]math.Vec3, 0, 3*k)
	for i := 0; i < k; i++ {
		verts = append(verts, math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1})
	}
	return scene.NewShapeNode(name, &scene.TriangleSet{Vertices: verts})
}

func near(a, b math.Vec3) bool {
	const eps = 1e-4
	d := a.Sub(b)
	return d.X < eps && d.X > -eps && d.Y < eps && d.Y > -eps && d.Z < eps && d.Z > -eps
}

func checkIdentityIndices(t *testing.T, m *TriangleMesh) {
	t.Helper()
	if len(m.Indices) != len(m.Vertices) {
		t.Fatalf("len(Indices) = %d, len(Vertices) = %d", len(m.Indices), len(m.Vertices))
	}
	for i, idx := range m.Indices {
		if idx != uint32(i) {
			t.Fatalf("Indices[%d] = %d", i, idx)
		}
	}
}

func TestExtractCounts(t *testing.T) {
	for _, k := range []int{1, 2, 7, 100} {
		t.Run(fmt.Sprintf("%d triangles", k), func(t *testing.T) {
			root := scene.NewNode("root")
			_ = root.AddChild(soup("a", k/2))
			_ = root.AddChild(soup("b", k-k/2))

			mesh, err := Extract(root)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(mesh.Vertices) != 3*k {
				t.Errorf("got %d vertices, want %d", len(mesh.Vertices), 3*k)
			}
			if mesh.NumTriangles() != k {
				t.Errorf("NumTriangles = %d, want %d", mesh.NumTriangles(), k)
			}
			checkIdentityIndices(t, mesh)
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	tests := []struct {
		name string
		root *scene.Node
	}{
		{"nil root", nil},
		{"no shapes", scene.NewNode("empty")},
		{"empty shape", scene.NewShapeNode("s", &scene.TriangleSet{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := Extract(tt.root)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !mesh.Empty() || len(mesh.Indices) != 0 {
				t.Errorf("got %d vertices / %d indices, want none", len(mesh.Vertices), len(mesh.Indices))
			}
		})
	}
}

func TestExtractIdentityLeavesVertices(t *testing.T) {
	tri := []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: 0.5}, {X: 0, Y: 0, Z: -9}}
	root := scene.NewShapeNode("tri", &scene.TriangleSet{Vertices: tri})

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i, v := range tri {
		if mesh.Vertices[i] != v {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i], v)
		}
	}
}

func TestExtractPreservesWinding(t *testing.T) {
	root := scene.NewShapeNode("tri", &scene.TriangleSet{
		Vertices: []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}},
		Indices:  []uint32{0, 2, 1},
	})
	root.SetTransform(math.Translate(0, 0, 5))

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []math.Vec3{{X: 1, Z: 5}, {Z: 6}, {Y: 1, Z: 5}}
	for i, w := range want {
		if mesh.Vertices[i] != w {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i], w)
		}
	}
}

// The scale is applied once by the model matrix and once more by the
// correction step.
func TestExtractAppliesScaleTwice(t *testing.T) {
	root := scene.NewShapeNode("tri", &scene.TriangleSet{
		Vertices: []math.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1}, {Y: 1}},
	})
	root.SetTransform(math.Scale(2, 3, 4))

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got, want := mesh.Vertices[0], (math.Vec3{X: 4, Y: 9, Z: 16}); got != want {
		t.Errorf("corrected vertex = %v, want %v", got, want)
	}

	root2 := scene.NewShapeNode("tri", &scene.TriangleSet{
		Vertices: []math.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1}, {Y: 1}},
	})
	root2.SetTransform(math.Scale(2, 3, 4))

	plain, err := ExtractWith(scene.NewCallbackAction(), root2, Options{SkipScaleCorrection: true})
	if err != nil {
		t.Fatalf("ExtractWith: %v", err)
	}
	if got, want := plain.Vertices[0], (math.Vec3{X: 2, Y: 3, Z: 4}); got != want {
		t.Errorf("uncorrected vertex = %v, want %v", got, want)
	}
	checkIdentityIndices(t, plain)
}

func TestExtractUsesLastVisitedTransform(t *testing.T) {
	root := scene.NewNode("root")
	small := soup("small", 1)
	small.SetTransform(math.Scale(2, 2, 2))
	big := soup("big", 1)
	big.SetTransform(math.Scale(10, 10, 10))
	_ = root.AddChild(small)
	_ = root.AddChild(big)

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Both triangles are rescaled by the last model's scale of 10.
	if got, want := mesh.Vertices[0], (math.Vec3{X: 20}); !near(got, want) {
		t.Errorf("first triangle vertex = %v, want %v", got, want)
	}
	if got, want := mesh.Vertices[3], (math.Vec3{X: 100}); !near(got, want) {
		t.Errorf("second triangle vertex = %v, want %v", got, want)
	}
}

func TestExtractRotatedScaleMatchesMathGL(t *testing.T) {
	axis := math.Vec3{X: 1, Y: 1}.Normalize()
	model := math.Translate(3, -1, 2).Mul(math.RotateAxis(axis, 0.6)).Mul(math.Scale(1.5, 1.5, 1.5))

	root := soup("tri", 1)
	root.SetTransform(model)

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	ref := mgl32.Translate3D(3, -1, 2).
		Mul4(mgl32.HomogRotate3D(0.6, mgl32.Vec3{axis.X, axis.Y, axis.Z})).
		Mul4(mgl32.Scale3D(1.5, 1.5, 1.5))
	for i, local := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		w := mgl32.TransformCoordinate(local, ref).Mul(1.5)
		if want := (math.Vec3{X: w[0], Y: w[1], Z: w[2]}); !near(mesh.Vertices[i], want) {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i], want)
		}
	}
}

func TestFinalize(t *testing.T) {
	mesh := &TriangleMesh{Vertices: []math.Vec3{{X: 1, Y: 1, Z: 1}, {X: 2, Y: -2, Z: 0}, {X: 0, Y: 0, Z: 3}}}
	Finalize(mesh, math.Vec3{X: 2, Y: 0.5, Z: -1})

	want := []math.Vec3{{X: 2, Y: 0.5, Z: -1}, {X: 4, Y: -1, Z: 0}, {X: 0, Y: 0, Z: -3}}
	for i, w := range want {
		if mesh.Vertices[i] != w {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i], w)
		}
	}
	checkIdentityIndices(t, mesh)
}

func TestFinalizeIdentityScale(t *testing.T) {
	verts := []math.Vec3{{X: 0.1, Y: 0.2, Z: 0.3}, {X: 7, Y: 8, Z: 9}, {X: -1, Y: -2, Z: -3}}
	mesh := &TriangleMesh{Vertices: append([]math.Vec3(nil), verts...)}
	Finalize(mesh, math.AxisScale(math.Identity()))

	for i, v := range verts {
		if mesh.Vertices[i] != v {
			t.Errorf("vertex %d changed: %v -> %v", i, v, mesh.Vertices[i])
		}
	}
}

func TestNoWelding(t *testing.T) {
	// Two triangles sharing an edge still get six vertices.
	root := scene.NewShapeNode("quad", &scene.TriangleSet{
		Vertices: []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	})

	mesh, err := Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(mesh.Vertices) != 6 {
		t.Errorf("got %d vertices, want 6", len(mesh.Vertices))
	}
}

func TestBounds(t *testing.T) {
	mesh := &TriangleMesh{}
	if _, _, ok := mesh.Bounds(); ok {
		t.Error("empty mesh should have no bounds")
	}

	mesh.Vertices = []math.Vec3{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 5, Z: 0}, {X: 0, Y: 0, Z: 9}}
	lo, hi, ok := mesh.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if lo != (math.Vec3{X: -1, Y: -2, Z: 0}) || hi != (math.Vec3{X: 1, Y: 5, Z: 9}) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
}

// fakeTraverser lets tests control what the traversal engine does.
type fakeTraverser struct {
	apply func(root *scene.Node, cb scene.TriangleFunc) error
	cb    scene.TriangleFunc
}

func (f *fakeTraverser) AddTriangleCallback(fn scene.TriangleFunc) { f.cb = fn }

func (f *fakeTraverser) Apply(root *scene.Node) error { return f.apply(root, f.cb) }

func TestRootHeldDuringTraversal(t *testing.T) {
	for _, prerefs := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d prior refs", prerefs), func(t *testing.T) {
			root := scene.NewNode("root")
			for i := 0; i < prerefs; i++ {
				root.Ref()
			}

			var during int32
			ft := &fakeTraverser{apply: func(n *scene.Node, cb scene.TriangleFunc) error {
				during = n.RefCount()
				cb(math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Identity())
				return nil
			}}

			mesh, err := ExtractWith(ft, root, Options{})
			if err != nil {
				t.Fatalf("ExtractWith: %v", err)
			}
			if during != int32(prerefs+1) {
				t.Errorf("ref count during traversal = %d, want %d", during, prerefs+1)
			}
			if got := root.RefCount(); got != int32(prerefs) {
				t.Errorf("ref count after = %d, want %d", got, prerefs)
			}
			if len(mesh.Vertices) != 3 {
				t.Errorf("got %d vertices, want 3", len(mesh.Vertices))
			}
		})
	}
}

func TestRootReleasedOnTraversalError(t *testing.T) {
	errEngine := errors.New("engine failure")
	root := scene.NewNode("root")
	root.Ref()

	ft := &fakeTraverser{apply: func(_ *scene.Node, cb scene.TriangleFunc) error {
		cb(math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Scale(5, 5, 5))
		return errEngine
	}}

	mesh, err := ExtractWith(ft, root, Options{})
	if !errors.Is(err, errEngine) {
		t.Fatalf("got %v, want engine error", err)
	}
	if root.RefCount() != 1 {
		t.Errorf("ref count after error = %d, want 1", root.RefCount())
	}
	// Partial geometry is returned uncorrected and without indices.
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 0 {
		t.Errorf("partial mesh: %d vertices, %d indices", len(mesh.Vertices), len(mesh.Indices))
	}
	if mesh.Vertices[0] != (math.Vec3{X: 5}) {
		t.Errorf("partial vertex = %v, want uncorrected (5,0,0)", mesh.Vertices[0])
	}
}

func TestRootReleasedOnPanic(t *testing.T) {
	root := scene.NewNode("root")
	root.Ref()

	ft := &fakeTraverser{apply: func(*scene.Node, scene.TriangleFunc) error {
		panic("engine blew up")
	}}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_, _ = ExtractWith(ft, root, Options{})
	}()

	if root.RefCount() != 1 {
		t.Errorf("ref count after panic = %d, want 1", root.RefCount())
	}
}

func TestRootOutlivesOwnerUntilExtractionEnds(t *testing.T) {
	root := scene.NewNode("root")
	root.Ref()
	a, b := soup("a", 1), soup("b", 1)
	_ = root.AddChild(a)
	_ = root.AddChild(b)

	action := scene.NewCallbackAction()
	dropped := false
	releasedDuring := false
	action.AddTriangleCallback(func(_, _, _ math.Vec3, _ math.Mat4) {
		if !dropped {
			dropped = true
			root.Unref()
		}
		releasedDuring = releasedDuring || root.Released()
	})

	mesh, err := ExtractWith(action, root, Options{})
	if err != nil {
		t.Fatalf("ExtractWith: %v", err)
	}
	if releasedDuring {
		t.Error("root released while extraction held it")
	}
	if len(mesh.Vertices) != 6 {
		t.Errorf("got %d vertices, want 6", len(mesh.Vertices))
	}
	if root.RefCount() != 0 {
		t.Errorf("ref count after = %d, want 0", root.RefCount())
	}
	// The last owner is gone, so ending the hold releases the tree.
	if !root.Released() {
		t.Error("root not released after its owner dropped it")
	}
	for _, c := range []*scene.Node{a, b} {
		if !c.Released() || c.RefCount() != 0 {
			t.Errorf("child %s: released=%v refs=%d, want released with 0 refs", c.Name, c.Released(), c.RefCount())
		}
	}
}

func TestConcurrentExtractions(t *testing.T) {
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(s float32) {
			defer wg.Done()
			root := soup("tri", 50)
			root.SetTransform(math.Scale(s, s, s))

			mesh, err := Extract(root)
			if err != nil {
				errs <- err
				return
			}
			for i, v := range mesh.Vertices {
				var want float32
				switch i % 3 {
				case 0:
					want = v.X
				case 1:
					want = v.Y
				case 2:
					want = v.Z
				}
				if want != s*s {
					errs <- fmt.Errorf("scale %v: vertex %d = %v", s, i, v)
					return
				}
			}
		}(float32(w))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
