package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Binary vector files carry an 8-byte magic, an element-kind byte and a
// little-endian element count, followed by the packed payload.
var vectorMagic = [8]byte{'E', 'S', 'S', 'A', 'V', 'E', 'C', '1'}

const (
	kindFloat64 byte = 1
	kindInt64   byte = 2
)

// WriteFloats writes a float64 vector (z-scores, mean shifts) in binary form.
func WriteFloats(w io.Writer, values []float64) error {
	if err := writeHeader(w, kindFloat64, len(values)); err != nil {
		return err
	}
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadFloats reads a float64 vector written by WriteFloats.
func ReadFloats(r io.Reader) ([]float64, error) {
	n, err := readHeader(r, kindFloat64)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	buf := make([]byte, 8)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("vector truncated at element %d: %w", i, err)
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
	return out, nil
}

// WriteInts writes an int64 vector (rank columns) in binary form.
func WriteInts(w io.Writer, values []int) error {
	if err := writeHeader(w, kindInt64, len(values)); err != nil {
		return err
	}
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, uint64(int64(v)))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadInts reads an int64 vector written by WriteInts.
func ReadInts(r io.Reader) ([]int, error) {
	n, err := readHeader(r, kindInt64)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	buf := make([]byte, 8)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("vector truncated at element %d: %w", i, err)
		}
		out[i] = int(int64(binary.LittleEndian.Uint64(buf)))
	}
	return out, nil
}

func writeHeader(w io.Writer, kind byte, count int) error {
	if _, err := w.Write(vectorMagic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{kind}); err != nil {
		return err
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(count))
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader, wantKind byte) (int, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, fmt.Errorf("vector header: %w", err)
	}
	if magic != vectorMagic {
		return 0, fmt.Errorf("not an essa vector file (magic %q)", magic[:])
	}
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return 0, err
	}
	if kind[0] != wantKind {
		return 0, fmt.Errorf("vector has element kind %d, want %d", kind[0], wantKind)
	}
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint64(buf)), nil
}

// WriteFloatsFile writes a float vector artifact to path.
func WriteFloatsFile(path string, values []float64) error {
	return writeFile(path, func(w io.Writer) error { return WriteFloats(w, values) })
}

// ReadFloatsFile reads a float vector artifact from path.
func ReadFloatsFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadFloats(f)
}

// WriteIntsFile writes an int vector artifact to path.
func WriteIntsFile(path string, values []int) error {
	return writeFile(path, func(w io.Writer) error { return WriteInts(w, values) })
}

// ReadIntsFile reads an int vector artifact from path.
func ReadIntsFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadInts(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
