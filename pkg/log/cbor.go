package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Events travel as a bare concatenation of CBOR items. Each item is
// self-delimiting, so an event file needs no framing or index and a
// reader can stop cleanly at any item boundary. Encoding is canonical
// so identical events produce identical bytes, and timestamps keep
// nanosecond precision because dispatch durations live in that range.
var eventEnc = mustEncMode(cbor.EncOptions{
	Sort:          cbor.SortCanonical,
	IndefLength:   cbor.IndefLengthForbidden,
	NilContainers: cbor.NilContainerAsNull,
	Time:          cbor.TimeRFC3339Nano,
})

// Decoding is lenient: an event written by a newer build may carry
// integer keys this build does not know, and a viewer should still
// read the rest of the record.
var eventDec = mustDecMode(cbor.DecOptions{
	DupMapKey:         cbor.DupMapKeyQuiet,
	IndefLength:       cbor.IndefLengthAllowed,
	ExtraReturnErrors: cbor.ExtraDecErrorNone,
})

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: event encoder mode: %v", err))
	}
	return m
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	m, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: event decoder mode: %v", err))
	}
	return m
}

// EncodeEvent encodes a single event as one CBOR item.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEnc.Marshal(event)
}

// DecodeEvent decodes one CBOR item into an event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an encoder appending event items to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEnc.NewEncoder(w)
}

// NewDecoder returns a decoder reading event items from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDec.NewDecoder(r)
}
