package nbt

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// cborEnc uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys and smallest integer encoding, so equal trees give identical bytes.
var cborEnc cbor.EncMode

// cborDec decodes untyped maps as map[string]any. NBT has no other key type.
var cborDec cbor.DecMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("nbt: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("nbt: CBOR decoder initialization failed: " + err.Error())
	}
}

// ToCBOR converts t to deterministic CBOR. ByteArray becomes a byte string;
// other arrays and lists become CBOR arrays, compounds CBOR maps.
func ToCBOR(t *Tag) ([]byte, error) {
	if t == nil {
		return nil, ErrNilTag
	}
	return cborEnc.Marshal(toAny(t, true))
}

// FromCBOR converts one CBOR data item to a tag, inferring numeric kinds
// the same way FromJSON does. Byte strings become ByteArray.
func FromCBOR(data []byte) (*Tag, error) {
	var v any
	if err := cborDec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("CBOR decode error: %w", err)
	}
	return fromAny(v, true)
}

// DiagnoseCBOR returns the CBOR diagnostic notation (RFC 8949 §8) of data.
func DiagnoseCBOR(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
