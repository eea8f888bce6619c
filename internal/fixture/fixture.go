package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/born-ml/opref/internal/tensor"
)

// Format constants.
const (
	MagicBytes    = "OPREF"
	FormatVersion = 1
	Ext           = ".cbor"
)

// Set is a named collection of tensors.
type Set map[string]*tensor.RawTensor

// File is a decoded fixture.
type File struct {
	Scenario string
	Tensors  Set
}

type record struct {
	Name  string `cbor:"name"`
	DType string `cbor:"dtype"`
	Shape []int  `cbor:"shape"`
	Data  []byte `cbor:"data"`
}

type envelope struct {
	Magic    string   `cbor:"magic"`
	Version  int      `cbor:"version"`
	Scenario string   `cbor:"scenario"`
	Tensors  []record `cbor:"tensors"`
	Checksum []byte   `cbor:"checksum"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Recorded fixtures must be byte-stable across runs.
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      16,
	}).DecMode(); err != nil {
		panic(err)
	}
}

// Encode writes scenario and set to w.
func Encode(w io.Writer, scenario string, set Set) error {
	env, err := buildEnvelope(scenario, set)
	if err != nil {
		return err
	}
	if err := encMode.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("fixture: encode %q: %w", scenario, err)
	}
	return nil
}

// Decode reads a fixture from r and validates it.
//
// Every tensor's data length must equal its shape's element count times the
// dtype size, and the stored checksum must match.
func Decode(r io.Reader) (*File, error) {
	var env envelope
	if err := decMode.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}

	if env.Magic != MagicBytes {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, env.Magic)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if len(env.Tensors) > MaxTensorCount {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyTensors, len(env.Tensors), MaxTensorCount)
	}
	if err := ValidateName(env.Scenario); err != nil {
		return nil, err
	}

	set := make(Set, len(env.Tensors))
	for _, rec := range env.Tensors {
		dtype, err := validateRecord(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := set[rec.Name]; dup {
			return nil, &ValidationError{Type: "duplicate_name", Tensor: rec.Name, Details: "tensor appears twice", Err: ErrInvalidName}
		}
		t, err := tensor.FromBytes(rec.Data, tensor.Shape(rec.Shape), dtype)
		if err != nil {
			return nil, fmt.Errorf("fixture: tensor %q: %w", rec.Name, err)
		}
		set[rec.Name] = t
	}

	sum := computeChecksum(env.Tensors)
	if !bytes.Equal(sum[:], env.Checksum) {
		return nil, ErrChecksumMismatch
	}

	return &File{Scenario: env.Scenario, Tensors: set}, nil
}

// Marshal encodes scenario and set into a byte slice.
func Marshal(scenario string, set Set) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, scenario, set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Path returns the fixture file path for scenario inside dir.
func Path(dir, scenario string) string {
	return filepath.Join(dir, scenario+Ext)
}

// Save writes a fixture to path, creating parent directories as needed.
// The file is written to a temporary name first and renamed into place.
func Save(path, scenario string, set Set) error {
	data, err := Marshal(scenario, set)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("fixture: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("fixture: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fixture: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fixture: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fixture: %w", err)
	}
	return nil
}

// Load reads and validates the fixture at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	defer f.Close()

	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

func buildEnvelope(scenario string, set Set) (*envelope, error) {
	if err := ValidateName(scenario); err != nil {
		return nil, err
	}
	if len(set) > MaxTensorCount {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyTensors, len(set), MaxTensorCount)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]record, 0, len(names))
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		t := set[name]
		if t == nil {
			return nil, &ValidationError{Type: "nil_tensor", Tensor: name, Details: "tensor is nil", Err: ErrSizeMismatch}
		}
		records = append(records, record{
			Name:  name,
			DType: t.DType().String(),
			Shape: slices.Clone([]int(t.Shape())),
			Data:  t.Data(),
		})
	}

	sum := computeChecksum(records)
	return &envelope{
		Magic:    MagicBytes,
		Version:  FormatVersion,
		Scenario: scenario,
		Tensors:  records,
		Checksum: sum[:],
	}, nil
}
