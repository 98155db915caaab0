package mikey

// PayloadPKECacheType is the envelope key cache indicator.
type PayloadPKECacheType uint8

// RFC3830, section 6.4
const (
	PayloadPKECacheTypeNone   PayloadPKECacheType = 0
	PayloadPKECacheTypeAlways PayloadPKECacheType = 1
	PayloadPKECacheTypeForCSB PayloadPKECacheType = 2
)

const pkeMaxDataLen = 0x3FFF

// PayloadPKE is an envelope data payload.
type PayloadPKE struct {
	C    PayloadPKECacheType
	Data []byte
}

// Set sets the cache indicator and a copy of the encrypted envelope key.
func (p *PayloadPKE) Set(c PayloadPKECacheType, data []byte) error {
	if c > 3 {
		return ErrInvalidData{Field: "cache type", Value: int(c)}
	}
	if len(data) > pkeMaxDataLen {
		return ErrValueTooLong{Field: "envelope key", Len: len(data), Max: pkeMaxDataLen}
	}

	p.C = c
	p.Data = cloneBytes(data)
	return nil
}

// Type implements Payload.
func (*PayloadPKE) Type() PayloadType {
	return PayloadTypePKE
}

func (p *PayloadPKE) unmarshal(buf []byte, _ parseState) (int, error) {
	err := checkSize(buf, 3)
	if err != nil {
		return 0, err
	}

	n := 1
	cLen := uint16(buf[n])<<8 | uint16(buf[n+1])
	n += 2

	p.C = PayloadPKECacheType(cLen >> 14)
	dataLen := int(cLen & pkeMaxDataLen)

	err = checkSize(buf, n+dataLen)
	if err != nil {
		return 0, err
	}

	p.Data = cloneBytes(buf[n : n+dataLen])
	n += dataLen

	return n, nil
}

func (p *PayloadPKE) marshalSize() int {
	return 3 + len(p.Data)
}

func (p *PayloadPKE) marshalTo(buf []byte, next PayloadType) (int, error) {
	if p.C > 3 {
		return 0, ErrInvalidData{Field: "cache type", Value: int(p.C)}
	}
	if len(p.Data) > pkeMaxDataLen {
		return 0, ErrValueTooLong{Field: "envelope key", Len: len(p.Data), Max: pkeMaxDataLen}
	}

	cLen := uint16(p.C)<<14 | uint16(len(p.Data))

	buf[0] = byte(next)
	buf[1] = byte(cLen >> 8)
	buf[2] = byte(cLen)
	n := 3

	n += copy(buf[n:], p.Data)

	return n, nil
}

func (p *PayloadPKE) clone() Payload {
	return &PayloadPKE{
		C:    p.C,
		Data: cloneBytes(p.Data),
	}
}
