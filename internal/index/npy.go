package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// npyMagic is the fixed prefix of every NumPy .npy file.
var npyMagic = []byte("\x93NUMPY")

var (
	shapeRe = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
	descrRe = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	orderRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
)

// ReadMatrix reads a two-dimensional .npy array of little-endian float32 or
// float64 values in C order and returns it as rows of float32.
func ReadMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, dim, descr, err := readHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var itemSize int
	switch descr {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("%s: unsupported dtype %q", path, descr)
	}

	data := make([]byte, rows*dim*itemSize)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("%s: truncated data section: %w", path, err)
	}

	out := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, dim)
		base := i * dim * itemSize
		for j := 0; j < dim; j++ {
			off := base + j*itemSize
			if itemSize == 4 {
				row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			} else {
				row[j] = float32(math.Float64frombits(binary.LittleEndian.Uint64(data[off:])))
			}
		}
		out[i] = row
	}
	return out, nil
}

// readHeader parses the .npy preamble and header dict, returning the row
// count, column count and dtype descriptor.
func readHeader(r io.Reader) (rows, dim int, descr string, err error) {
	pre := make([]byte, 8)
	if _, err = io.ReadFull(r, pre); err != nil {
		return 0, 0, "", fmt.Errorf("read preamble: %w", err)
	}
	if !bytes.Equal(pre[:6], npyMagic) {
		return 0, 0, "", fmt.Errorf("not a .npy file")
	}

	major := pre[6]
	var headerLen int
	switch {
	case major == 1:
		var n uint16
		if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, 0, "", fmt.Errorf("read header length: %w", err)
		}
		headerLen = int(n)
	case major >= 2:
		var n uint32
		if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, 0, "", fmt.Errorf("read header length: %w", err)
		}
		headerLen = int(n)
	default:
		return 0, 0, "", fmt.Errorf("unsupported .npy version %d", major)
	}

	raw := make([]byte, headerLen)
	if _, err = io.ReadFull(r, raw); err != nil {
		return 0, 0, "", fmt.Errorf("read header: %w", err)
	}
	header := string(raw)

	m := orderRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, "", fmt.Errorf("missing fortran_order in header")
	}
	if m[1] == "True" {
		return 0, 0, "", fmt.Errorf("fortran-order arrays are not supported")
	}

	m = descrRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, "", fmt.Errorf("missing descr in header")
	}
	descr = m[1]

	m = shapeRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, "", fmt.Errorf("missing shape in header")
	}
	parts := strings.Split(m[1], ",")
	var dims []int
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, "", fmt.Errorf("bad shape element %q", p)
		}
		dims = append(dims, v)
	}
	if len(dims) != 2 {
		return 0, 0, "", fmt.Errorf("expected a 2-dimensional array, got shape %v", dims)
	}
	return dims[0], dims[1], descr, nil
}
