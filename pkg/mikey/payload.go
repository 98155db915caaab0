package mikey

import (
	"fmt"
)

// PayloadType is the type of a payload.
type PayloadType uint8

// RFC3830, table 6.1.b
const (
	PayloadTypeLast    PayloadType = 0
	PayloadTypeKEMAC   PayloadType = 1
	PayloadTypePKE     PayloadType = 2
	PayloadTypeDH      PayloadType = 3
	PayloadTypeSIGN    PayloadType = 4
	PayloadTypeT       PayloadType = 5
	PayloadTypeID      PayloadType = 6
	PayloadTypeCERT    PayloadType = 7
	PayloadTypeCHASH   PayloadType = 8
	PayloadTypeV       PayloadType = 9
	PayloadTypeSP      PayloadType = 10
	PayloadTypeRAND    PayloadType = 11
	PayloadTypeERR     PayloadType = 12
	PayloadTypeKeyData PayloadType = 20
	PayloadTypeGenExt  PayloadType = 21
)

var payloadTypeLabels = map[PayloadType]string{
	PayloadTypeLast:    "Last",
	PayloadTypeKEMAC:   "KEMAC",
	PayloadTypePKE:     "PKE",
	PayloadTypeDH:      "DH",
	PayloadTypeSIGN:    "SIGN",
	PayloadTypeT:       "T",
	PayloadTypeID:      "ID",
	PayloadTypeCERT:    "CERT",
	PayloadTypeCHASH:   "CHASH",
	PayloadTypeV:       "V",
	PayloadTypeSP:      "SP",
	PayloadTypeRAND:    "RAND",
	PayloadTypeERR:     "ERR",
	PayloadTypeKeyData: "KeyData",
	PayloadTypeGenExt:  "GenExt",
}

// String implements fmt.Stringer.
func (t PayloadType) String() string {
	if l, ok := payloadTypeLabels[t]; ok {
		return l
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

type parseState int

const (
	parseStatePSK parseState = iota
	parseStatePK
	parseStateKEMAC
	parseStateOther
)

// Payload is a MIKEY payload.
// It is implemented by PayloadKEMAC, PayloadPKE, PayloadT, PayloadSP,
// PayloadRAND, PayloadKeyData and PayloadOpaque.
type Payload interface {
	// Type returns the payload type.
	Type() PayloadType

	unmarshal(buf []byte, state parseState) (int, error)
	marshalSize() int
	marshalTo(buf []byte, next PayloadType) (int, error)
	clone() Payload
}

// NewPayload allocates an empty payload of the given type.
// Types that are recognized but not implemented return ErrUnsupportedPayloadType.
func NewPayload(typ PayloadType) (Payload, error) {
	switch typ {
	case PayloadTypeKEMAC:
		return &PayloadKEMAC{}, nil
	case PayloadTypePKE:
		return &PayloadPKE{}, nil
	case PayloadTypeT:
		return &PayloadT{}, nil
	case PayloadTypeSP:
		return &PayloadSP{}, nil
	case PayloadTypeRAND:
		return &PayloadRAND{}, nil
	case PayloadTypeKeyData:
		return &PayloadKeyData{}, nil
	}
	return nil, ErrUnsupportedPayloadType{Type: typ}
}

func expectedType[T Payload]() PayloadType {
	var zero T
	if _, ok := any(zero).(*PayloadOpaque); ok {
		return PayloadTypeLast
	}
	return zero.Type()
}

// As returns the payload as its concrete type.
// It returns ErrPayloadTypeMismatch when the payload is of a different type.
func As[T Payload](p Payload) (T, error) {
	if v, ok := p.(T); ok {
		return v, nil
	}

	var zero T
	actual := PayloadTypeLast
	if p != nil {
		actual = p.Type()
	}

	return zero, ErrPayloadTypeMismatch{
		Expected: expectedType[T](),
		Actual:   actual,
	}
}

func newPayloadForParsing(typ PayloadType) (Payload, error) {
	switch typ {
	case PayloadTypeDH, PayloadTypeSIGN, PayloadTypeID, PayloadTypeCERT,
		PayloadTypeCHASH, PayloadTypeV, PayloadTypeERR, PayloadTypeGenExt:
		return &PayloadOpaque{Kind: typ}, nil
	}

	pl, err := NewPayload(typ)
	if err != nil {
		return nil, ErrInvalidData{Field: "payload type", Value: int(typ)}
	}
	return pl, nil
}

func checkSize(buf []byte, need int) error {
	if len(buf) < need {
		return ErrShortData{Need: need, Have: len(buf)}
	}
	return nil
}

// cloneBytes copies a byte slice. Empty slices become nil, in order to
// make parsed and constructed payloads comparable.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	ret := make([]byte, len(b))
	copy(ret, b)
	return ret
}

func unmarshalPayloads(buf []byte, next PayloadType, state parseState) ([]Payload, int, error) {
	var payloads []Payload
	n := 0

	for next != PayloadTypeLast {
		payload, err := newPayloadForParsing(next)
		if err != nil {
			return nil, 0, err
		}

		var payloadLen int
		payloadLen, err = payload.unmarshal(buf[n:], state)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to parse payload %v: %w", next, err)
		}

		// SIGN has no next payload field and is always the last payload
		if next == PayloadTypeSIGN {
			next = PayloadTypeLast
		} else {
			next = PayloadType(buf[n])
		}

		n += payloadLen
		payloads = append(payloads, payload)
	}

	return payloads, n, nil
}

func payloadsMarshalSize(payloads []Payload) int {
	n := 0
	for _, pl := range payloads {
		if pl != nil {
			n += pl.marshalSize()
		}
	}
	return n
}

func payloadsMarshalTo(buf []byte, payloads []Payload) (int, error) {
	for i, pl := range payloads {
		if pl == nil {
			return 0, fmt.Errorf("payload %d: %w", i, ErrNilPayload)
		}
		if pl.Type() == PayloadTypeSIGN && i != len(payloads)-1 {
			return 0, fmt.Errorf("SIGN payload must be the last payload")
		}
	}

	n := 0

	for i, pl := range payloads {
		var nextPayloadType PayloadType
		if i != len(payloads)-1 {
			nextPayloadType = payloads[i+1].Type()
		} else {
			nextPayloadType = PayloadTypeLast
		}

		n2, err := pl.marshalTo(buf[n:], nextPayloadType)
		if err != nil {
			return 0, fmt.Errorf("unable to encode payload %v: %w", pl.Type(), err)
		}
		n += n2
	}

	return n, nil
}

func clonePayloads(payloads []Payload) []Payload {
	if payloads == nil {
		return nil
	}
	ret := make([]Payload, len(payloads))
	for i, pl := range payloads {
		if pl != nil {
			ret[i] = pl.clone()
		}
	}
	return ret
}

func checkIndex(idx int, l int) error {
	if idx < 0 || idx >= l {
		return ErrIndexOutOfRange{Index: idx, Len: l}
	}
	return nil
}
