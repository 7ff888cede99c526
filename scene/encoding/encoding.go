// Package encoding serializes compiled scene data into the fixed-stride
// little-endian records consumed by the compute kernel.
package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/types"
)

var (
	ErrShortBuffer = errors.New("encoding: buffer too short")
	ErrStride      = errors.New("encoding: data length is not a multiple of the record size")
)

// Record sizes in bytes.
const (
	SizeofLightingParams = scene.SizeofLightingParams
	SizeofMeshObject     = scene.SizeofMeshObject
	SizeofSphere         = scene.SizeofSphere
	SizeofNode           = bvh.SizeofNode
	SizeofVec3           = scene.SizeofVec3
	SizeofIndex          = scene.SizeofIndex
	SizeofMat4           = 64
)

type writer struct {
	buf []byte
	off int
}

func (w *writer) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:w.off+4], v)
	w.off += 4
}

func (w *writer) int32(v int32) {
	w.uint32(uint32(v))
}

func (w *writer) float32(v float32) {
	w.uint32(math.Float32bits(v))
}

func (w *writer) vec3(v types.Vec3) {
	w.float32(v[0])
	w.float32(v[1])
	w.float32(v[2])
}

func (w *writer) mat4(m types.Mat4) {
	for _, v := range m {
		w.float32(v)
	}
}

func (w *writer) lighting(l scene.LightingParams) {
	w.vec3(l.Albedo)
	w.vec3(l.Specular)
	w.vec3(l.Emission)
	w.float32(l.Smoothness)
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v
}

func (r *reader) int32() int32 {
	return int32(r.uint32())
}

func (r *reader) float32() float32 {
	return math.Float32frombits(r.uint32())
}

func (r *reader) vec3() types.Vec3 {
	return types.Vec3{r.float32(), r.float32(), r.float32()}
}

func (r *reader) mat4() types.Mat4 {
	var m types.Mat4
	for index := range m {
		m[index] = r.float32()
	}
	return m
}

func (r *reader) lighting() scene.LightingParams {
	return scene.LightingParams{
		Albedo:     r.vec3(),
		Specular:   r.vec3(),
		Emission:   r.vec3(),
		Smoothness: r.float32(),
	}
}

func putLighting(w *writer, l scene.LightingParams) {
	w.lighting(l)
}

func putMeshObject(w *writer, m scene.MeshObject) {
	w.mat4(m.LocalToWorld)
	w.int32(m.IndexOffset)
	w.int32(m.IndexCount)
	w.lighting(m.Lighting)
}

func putSphere(w *writer, s scene.Sphere) {
	w.vec3(s.Position)
	w.float32(s.Radius)
	w.lighting(s.Lighting)
}

func putNode(w *writer, n bvh.Node) {
	w.vec3(n.Min)
	w.vec3(n.Max)
	w.int32(n.Index)
}

func putVec3(w *writer, v types.Vec3) {
	w.vec3(v)
}

func putIndex(w *writer, v int32) {
	w.int32(v)
}

func getLighting(r *reader) scene.LightingParams {
	return r.lighting()
}

func getMeshObject(r *reader) scene.MeshObject {
	return scene.MeshObject{
		LocalToWorld: r.mat4(),
		IndexOffset:  r.int32(),
		IndexCount:   r.int32(),
		Lighting:     r.lighting(),
	}
}

func getSphere(r *reader) scene.Sphere {
	return scene.Sphere{
		Position: r.vec3(),
		Radius:   r.float32(),
		Lighting: r.lighting(),
	}
}

func getNode(r *reader) bvh.Node {
	return bvh.Node{
		Min:   r.vec3(),
		Max:   r.vec3(),
		Index: r.int32(),
	}
}

func getVec3(r *reader) types.Vec3 {
	return r.vec3()
}

func getIndex(r *reader) int32 {
	return r.int32()
}

// Encode a list of records. An empty list yields a nil slice.
func encodeAll[T any](items []T, stride int, put func(*writer, T)) []byte {
	if len(items) == 0 {
		return nil
	}

	w := &writer{buf: make([]byte, len(items)*stride)}
	for _, item := range items {
		put(w, item)
	}
	return w.buf
}

// Decode a list of records.
func decodeAll[T any](data []byte, stride int, get func(*reader) T) ([]T, error) {
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d", ErrStride, len(data), stride)
	}

	out := make([]T, len(data)/stride)
	r := &reader{buf: data}
	for index := range out {
		out[index] = get(r)
	}
	return out, nil
}

// Decode a single record from the start of data.
func decodeOne[T any](data []byte, stride int, get func(*reader) T) (T, error) {
	if len(data) < stride {
		var zero T
		return zero, fmt.Errorf("%w: need %d bytes; got %d", ErrShortBuffer, stride, len(data))
	}
	return get(&reader{buf: data}), nil
}

// Marshal lighting parameters into a 40 byte record.
func MarshalLighting(l scene.LightingParams) []byte {
	return encodeAll([]scene.LightingParams{l}, SizeofLightingParams, putLighting)
}

// Unmarshal lighting parameters.
func UnmarshalLighting(data []byte) (scene.LightingParams, error) {
	return decodeOne(data, SizeofLightingParams, getLighting)
}

// Marshal a mesh object into a 112 byte record.
func MarshalMeshObject(m scene.MeshObject) []byte {
	return encodeAll([]scene.MeshObject{m}, SizeofMeshObject, putMeshObject)
}

// Unmarshal a mesh object.
func UnmarshalMeshObject(data []byte) (scene.MeshObject, error) {
	return decodeOne(data, SizeofMeshObject, getMeshObject)
}

// Marshal a sphere into a 56 byte record.
func MarshalSphere(s scene.Sphere) []byte {
	return encodeAll([]scene.Sphere{s}, SizeofSphere, putSphere)
}

// Unmarshal a sphere.
func UnmarshalSphere(data []byte) (scene.Sphere, error) {
	return decodeOne(data, SizeofSphere, getSphere)
}

// Marshal a BVH node into a 28 byte record.
func MarshalNode(n bvh.Node) []byte {
	return encodeAll([]bvh.Node{n}, SizeofNode, putNode)
}

// Unmarshal a BVH node.
func UnmarshalNode(data []byte) (bvh.Node, error) {
	return decodeOne(data, SizeofNode, getNode)
}

// Encode a mesh object list.
func EncodeMeshObjects(items []scene.MeshObject) []byte {
	return encodeAll(items, SizeofMeshObject, putMeshObject)
}

// Decode a mesh object list.
func DecodeMeshObjects(data []byte) ([]scene.MeshObject, error) {
	return decodeAll(data, SizeofMeshObject, getMeshObject)
}

// Encode a sphere list.
func EncodeSpheres(items []scene.Sphere) []byte {
	return encodeAll(items, SizeofSphere, putSphere)
}

// Decode a sphere list.
func DecodeSpheres(data []byte) ([]scene.Sphere, error) {
	return decodeAll(data, SizeofSphere, getSphere)
}

// Encode a BVH node list.
func EncodeNodes(items []bvh.Node) []byte {
	return encodeAll(items, SizeofNode, putNode)
}

// Decode a BVH node list.
func DecodeNodes(data []byte) ([]bvh.Node, error) {
	return decodeAll(data, SizeofNode, getNode)
}

// Encode a vertex or normal list.
func EncodeVec3s(items []types.Vec3) []byte {
	return encodeAll(items, SizeofVec3, putVec3)
}

// Decode a vertex or normal list.
func DecodeVec3s(data []byte) ([]types.Vec3, error) {
	return decodeAll(data, SizeofVec3, getVec3)
}

// Encode an index list.
func EncodeIndices(items []int32) []byte {
	return encodeAll(items, SizeofIndex, putIndex)
}

// Decode an index list.
func DecodeIndices(data []byte) ([]int32, error) {
	return decodeAll(data, SizeofIndex, getIndex)
}
