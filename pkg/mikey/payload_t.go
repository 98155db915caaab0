package mikey

import (
	"math"
	"time"

	"github.com/bluenviron/gomikey/pkg/ntp"
)

// PayloadTTSType is a timestamp type.
type PayloadTTSType uint8

// RFC3830, table 6.6.a
const (
	PayloadTTSTypeNTPUTC  PayloadTTSType = 0
	PayloadTTSTypeNTP     PayloadTTSType = 1
	PayloadTTSTypeCounter PayloadTTSType = 2
)

func (t PayloadTTSType) valueLen() (int, error) {
	switch t {
	case PayloadTTSTypeNTPUTC, PayloadTTSTypeNTP:
		return 8, nil
	case PayloadTTSTypeCounter:
		return 4, nil
	}
	return 0, ErrInvalidData{Field: "timestamp type", Value: int(t)}
}

// PayloadT is a timestamp payload.
type PayloadT struct {
	TSType  PayloadTTSType
	TSValue uint64
}

// Set sets the timestamp.
func (p *PayloadT) Set(tsType PayloadTTSType, tsValue uint64) error {
	_, err := tsType.valueLen()
	if err != nil {
		return err
	}

	if tsType == PayloadTTSTypeCounter && tsValue > math.MaxUint32 {
		return ErrValueTooLong{Field: "counter", Len: 8, Max: 4}
	}

	p.TSType = tsType
	p.TSValue = tsValue
	return nil
}

// Time returns the timestamp as absolute time.
// It is available for NTP timestamps only.
func (p *PayloadT) Time() (time.Time, error) {
	if p.TSType != PayloadTTSTypeNTPUTC && p.TSType != PayloadTTSTypeNTP {
		return time.Time{}, ErrInvalidData{Field: "timestamp type", Value: int(p.TSType)}
	}
	return ntp.Decode(p.TSValue), nil
}

// Type implements Payload.
func (*PayloadT) Type() PayloadType {
	return PayloadTypeT
}

func (p *PayloadT) unmarshal(buf []byte, _ parseState) (int, error) {
	err := checkSize(buf, 2)
	if err != nil {
		return 0, err
	}

	n := 1
	p.TSType = PayloadTTSType(buf[n])
	n++

	valueLen, err := p.TSType.valueLen()
	if err != nil {
		return 0, err
	}

	err = checkSize(buf, n+valueLen)
	if err != nil {
		return 0, err
	}

	p.TSValue = 0
	for i := 0; i < valueLen; i++ {
		p.TSValue = p.TSValue<<8 | uint64(buf[n+i])
	}
	n += valueLen

	return n, nil
}

func (p *PayloadT) marshalSize() int {
	valueLen, err := p.TSType.valueLen()
	if err != nil {
		return 2
	}
	return 2 + valueLen
}

func (p *PayloadT) marshalTo(buf []byte, next PayloadType) (int, error) {
	valueLen, err := p.TSType.valueLen()
	if err != nil {
		return 0, err
	}

	if valueLen == 4 && p.TSValue > math.MaxUint32 {
		return 0, ErrValueTooLong{Field: "counter", Len: 8, Max: 4}
	}

	buf[0] = byte(next)
	buf[1] = byte(p.TSType)
	n := 2

	for i := 0; i < valueLen; i++ {
		buf[n+i] = byte(p.TSValue >> (8 * (valueLen - 1 - i)))
	}
	n += valueLen

	return n, nil
}

func (p *PayloadT) clone() Payload {
	c := *p
	return &c
}
