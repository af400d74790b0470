// Package target describes the compilation target's data layout: the bit
// widths that type lowering (pkg/lower) and type layout (pkg/ctypes) need
// but that C's abstract type system does not fix on its own.
package target

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec holds the bit widths of the primitive C types for one target.
// Zero fields are invalid; use Default or Load to obtain a populated Spec.
type Spec struct {
	IntBits     int `yaml:"int_bits"`
	LongBits    int `yaml:"long_bits"`
	PointerBits int `yaml:"pointer_bits"`
	Float32Bits int `yaml:"float32_bits"`
	Float64Bits int `yaml:"float64_bits"`
}

// Default returns the LP64/ARM64 layout this repo's other passes have
// always assumed: 32-bit int, 64-bit long and pointers, IEEE single/double.
func Default() *Spec {
	return &Spec{
		IntBits:     32,
		LongBits:    64,
		PointerBits: 64,
		Float32Bits: 32,
		Float64Bits: 64,
	}
}

// Load reads a target spec from a YAML file, starting from Default and
// overriding any fields the file sets. A field the file omits keeps its
// default value, so a target file only needs to mention what differs; a
// width the file sets to zero is rejected with an error.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: reading %s: %w", path, err)
	}
	spec := Default()
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("target: parsing %s: %w", path, err)
	}
	if spec.IntBits == 0 || spec.LongBits == 0 || spec.PointerBits == 0 ||
		spec.Float32Bits == 0 || spec.Float64Bits == 0 {
		return nil, fmt.Errorf("target: %s is missing a required width field", path)
	}
	return spec, nil
}
