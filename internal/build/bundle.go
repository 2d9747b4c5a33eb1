package build

import (
	"fmt"
	"os"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
)

// BundleVersion is the bundle format version written by this package.
const BundleVersion = 1

const (
	BundleFile   = "bundle.cbor"
	ManifestFile = "manifest.json"
)

// Bundle is the set of modules produced by one build.
type Bundle struct {
	Version int       `cbor:"1,keyasint"`
	Modules []*Module `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	// State values decode to the same shapes the evaluator produces.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode serializes the bundle.
func (b *Bundle) Encode() ([]byte, error) {
	return encMode.Marshal(b)
}

// DecodeBundle parses an encoded bundle.
func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := decMode.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", b.Version)
	}
	return &b, nil
}

// Register compiles every module and defines it in reg. It stops at the
// first failure.
func (b *Bundle) Register(reg *component.Registry) error {
	for _, m := range b.Modules {
		c, err := m.Component()
		if err != nil {
			return err
		}
		if err := reg.Define(m.Name, c); err != nil {
			return err
		}
	}
	return nil
}

// LoadBundle reads the bundle at path and registers its modules into reg.
func LoadBundle(path string, reg *component.Registry) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("W047").WithLocation(path, 0, 0).Wrap(err)
	}
	b, err := DecodeBundle(data)
	if err != nil {
		return nil, errors.New("W047").WithLocation(path, 0, 0).Wrap(err)
	}
	if err := b.Register(reg); err != nil {
		return nil, err
	}
	return b, nil
}
