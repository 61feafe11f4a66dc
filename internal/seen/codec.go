package seen

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/obentoo/aptcron/internal/apt"
)

// record is the on-disk form of an update: a 3-element CBOR array of
// name, new version, old version.
type record struct {
	_          struct{} `cbor:",toarray"`
	Name       string
	NewVersion string
	OldVersion string
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("seen: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("seen: CBOR decoder initialization failed: " + err.Error())
	}
}

func encode(baseline Baseline) ([]byte, error) {
	records := make([]record, len(baseline))
	for i, u := range baseline {
		records[i] = record{Name: u.Name, NewVersion: u.NewVersion, OldVersion: u.OldVersion}
	}
	return encMode.Marshal(records)
}

func decode(data []byte) (Baseline, error) {
	var records []record
	if err := decMode.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	baseline := make(Baseline, len(records))
	for i, r := range records {
		baseline[i] = apt.Update{Name: r.Name, NewVersion: r.NewVersion, OldVersion: r.OldVersion}
	}
	return baseline, nil
}
