// RSM (Resource Model) binary model files: a named node hierarchy where each
// node carries a transform and an indexed triangle list.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/scenemesh/pkg/encoding"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidNodeCount      = errors.New("invalid RSM node count")
)

const (
	rsmMagic      = "GRSM"
	rsmNameLength = 40
	maxRSMNodes   = 10000
	maxRSMItems   = 100000
	maxRSMKeys    = 10000
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// RSMFace is a triangle referencing the node's vertex array.
type RSMFace struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16
	TwoSide     int32
}

// RSMRotKey is a rotation keyframe (X, Y, Z, W quaternion).
type RSMRotKey struct {
	Frame      int32
	Quaternion [4]float32
}

// RSMScaleKey is a scale keyframe.
type RSMScaleKey struct {
	Frame int32
	Scale [3]float32
}

// RSMNode is one node of the model hierarchy.
type RSMNode struct {
	Name   string
	Parent string

	Matrix   [9]float32 // column-major 3x3, applied to vertices only
	Offset   [3]float32 // pivot, applied to vertices only
	Position [3]float32
	RotAngle float32
	RotAxis  [3]float32
	Scale    [3]float32

	Vertices [][3]float32
	Faces    []RSMFace

	RotKeys   []RSMRotKey
	ScaleKeys []RSMScaleKey
}

// RSM is a parsed model file.
type RSM struct {
	Version    RSMVersion
	AnimLength int32
	Textures   []string
	RootNode   string
	Nodes      []RSMNode
}

// ParseRSM parses RSM data from a byte slice.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != rsmMagic {
		return nil, ErrInvalidRSMMagic
	}

	r := &binReader{r: bytes.NewReader(data[4:])}
	rsm := &RSM{}
	r.read(&rsm.Version.Major)
	r.read(&rsm.Version.Minor)

	if rsm.Version.Major < 1 || rsm.Version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	var shading int32
	r.read(&rsm.AnimLength)
	r.read(&shading)
	if rsm.Version.AtLeast(1, 4) {
		r.skip(1) // alpha
	}
	r.skip(16) // reserved

	textureCount := r.count(maxRSMItems)
	rsm.Textures = make([]string, textureCount)
	for i := range rsm.Textures {
		rsm.Textures[i] = r.name()
	}
	rsm.RootNode = r.name()

	var nodeCount int32
	r.read(&nodeCount)
	if r.err != nil {
		return nil, r.err
	}
	if nodeCount < 0 || nodeCount > maxRSMNodes {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeCount, nodeCount)
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		r.node(&rsm.Nodes[i], rsm.Version)
		if r.err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, r.err)
		}
	}

	return rsm, nil
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// GetNodeByName returns a node by its name, or nil if not found.
func (rsm *RSM) GetNodeByName(name string) *RSMNode {
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Name == name {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// TotalFaceCount returns the number of faces across all nodes.
func (rsm *RSM) TotalFaceCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Faces)
	}
	return total
}

// binReader is a little-endian reader that remembers its first error, so a
// run of reads can be checked once.
type binReader struct {
	r   *bytes.Reader
	err error
}

func (b *binReader) read(v any) {
	if b.err != nil {
		return
	}
	if err := binary.Read(b.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncatedRSMData
		}
		b.err = err
	}
}

func (b *binReader) skip(n int64) {
	if b.err != nil {
		return
	}
	if int64(b.r.Len()) < n {
		b.err = ErrTruncatedRSMData
		return
	}
	_, b.err = b.r.Seek(n, io.SeekCurrent)
}

func (b *binReader) name() string {
	buf := make([]byte, rsmNameLength)
	b.read(buf)
	if b.err != nil {
		return ""
	}
	return encoding.DecodeFixed(buf)
}

// count reads an int32 element count, treating values outside [0, limit]
// as zero.
func (b *binReader) count(limit int32) int {
	var n int32
	b.read(&n)
	if b.err != nil || n < 0 || n > limit {
		return 0
	}
	return int(n)
}

func (b *binReader) node(node *RSMNode, version RSMVersion) {
	node.Name = b.name()
	node.Parent = b.name()

	// Per-node texture indices are not needed for geometry.
	b.skip(int64(b.count(maxRSMItems)) * 4)

	b.read(&node.Matrix)
	b.read(&node.Offset)
	b.read(&node.Position)
	b.read(&node.RotAngle)
	b.read(&node.RotAxis)
	b.read(&node.Scale)

	node.Vertices = make([][3]float32, b.count(maxRSMItems))
	b.read(node.Vertices)

	texCoordSize := int64(8)
	if version.AtLeast(1, 2) {
		texCoordSize += 4 // vertex color
	}
	b.skip(int64(b.count(maxRSMItems)) * texCoordSize)

	node.Faces = make([]RSMFace, b.count(maxRSMItems))
	for i := range node.Faces {
		f := &node.Faces[i]
		b.read(&f.VertexIDs)
		b.read(&f.TexCoordIDs)
		b.read(&f.TextureID)
		b.skip(2) // padding
		b.read(&f.TwoSide)
		if version.AtLeast(1, 2) {
			b.skip(4) // smoothing group
		}
	}

	if !version.AtLeast(1, 5) {
		// Position keyframes: frame + xyz. Superseded by the static position.
		b.skip(int64(b.count(maxRSMKeys)) * 16)
	}

	node.RotKeys = make([]RSMRotKey, b.count(maxRSMKeys))
	for i := range node.RotKeys {
		b.read(&node.RotKeys[i].Frame)
		b.read(&node.RotKeys[i].Quaternion)
	}

	if version.AtLeast(1, 5) {
		node.ScaleKeys = make([]RSMScaleKey, b.count(maxRSMKeys))
		for i := range node.ScaleKeys {
			b.read(&node.ScaleKeys[i].Frame)
			b.read(&node.ScaleKeys[i].Scale)
		}
	}
}
