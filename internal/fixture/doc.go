// Package fixture stores named tensor sets as CBOR files.
//
// A fixture holds the outputs of one scenario so an external harness can hand
// its results over for comparison, or so reference outputs can be recorded once
// and replayed later.
//
//	File Structure (CBOR map):
//	  magic:    "OPREF"
//	  version:  1
//	  scenario: scenario name
//	  tensors:  [{name, dtype, shape, data}, ...] sorted by name
//	  checksum: SHA-256 over every tensor's name and data, in order
//
// Tensor data is the raw little-endian element buffer of tensor.RawTensor.
//
// Example usage:
//
//	// Record
//	if err := fixture.Save("out/adamw_basic.cbor", "adamw_basic", outputs); err != nil {
//	    return err
//	}
//
//	// Replay
//	f, err := fixture.Load("out/adamw_basic.cbor")
//	if err != nil {
//	    return err
//	}
//	outputs := f.Tensors
package fixture
