package mikey

// PayloadKEMACEncrAlg is a encryption algorithm.
type PayloadKEMACEncrAlg uint8

// RFC3830, Table 6.2.a
const (
	PayloadKEMACEncrAlgNULL      PayloadKEMACEncrAlg = 0
	PayloadKEMACEncrAlgAESCM128  PayloadKEMACEncrAlg = 1
	PayloadKEMACEncrAlgAESKW128  PayloadKEMACEncrAlg = 2
	PayloadKEMACEncrAlgAESGCM128 PayloadKEMACEncrAlg = 6
)

// PayloadKEMACMacAlg is a authentication algorithm.
type PayloadKEMACMacAlg uint8

// RFC3830, Table 6.2.b
const (
	PayloadKEMACMacAlgNULL        PayloadKEMACMacAlg = 0
	PayloadKEMACMacAlgHMACSHA1160 PayloadKEMACMacAlg = 1
)

const hmacSHA1160Len = 160 / 8

func (a PayloadKEMACMacAlg) macLen() (int, error) {
	switch a {
	case PayloadKEMACMacAlgNULL:
		return 0, nil
	case PayloadKEMACMacAlgHMACSHA1160:
		return hmacSHA1160Len, nil
	}
	return 0, ErrInvalidData{Field: "MAC algorithm", Value: int(a)}
}

// PayloadKEMAC is a Key data transport payload.
//
// Encryption and MAC computation are not performed: SubPayloads are
// written as they are and MAC is written as is (or zero-filled when nil).
type PayloadKEMAC struct {
	EncrAlg     PayloadKEMACEncrAlg
	SubPayloads []Payload
	MacAlg      PayloadKEMACMacAlg
	MAC         []byte
}

// Set sets the encryption and authentication algorithms.
func (p *PayloadKEMAC) Set(encrAlg PayloadKEMACEncrAlg, macAlg PayloadKEMACMacAlg) {
	p.EncrAlg = encrAlg
	p.MacAlg = macAlg
}

// NumSubPayloads returns the number of sub-payloads.
func (p *PayloadKEMAC) NumSubPayloads() int {
	return len(p.SubPayloads)
}

// SubPayload returns the sub-payload at the given index.
func (p *PayloadKEMAC) SubPayload(idx int) (Payload, error) {
	if err := checkIndex(idx, len(p.SubPayloads)); err != nil {
		return nil, err
	}
	return p.SubPayloads[idx], nil
}

// AddSubPayload appends a sub-payload. The KEMAC payload takes ownership of it.
func (p *PayloadKEMAC) AddSubPayload(sub Payload) error {
	if sub == nil {
		return ErrNilPayload
	}
	p.SubPayloads = append(p.SubPayloads, sub)
	return nil
}

// RemoveSubPayload removes the sub-payload at the given index.
func (p *PayloadKEMAC) RemoveSubPayload(idx int) error {
	if err := checkIndex(idx, len(p.SubPayloads)); err != nil {
		return err
	}
	p.SubPayloads = append(p.SubPayloads[:idx], p.SubPayloads[idx+1:]...)
	if len(p.SubPayloads) == 0 {
		p.SubPayloads = nil
	}
	return nil
}

// Type implements Payload.
func (*PayloadKEMAC) Type() PayloadType {
	return PayloadTypeKEMAC
}

func (p *PayloadKEMAC) unmarshal(buf []byte, state parseState) (int, error) {
	err := checkSize(buf, 5)
	if err != nil {
		return 0, err
	}

	n := 1
	p.EncrAlg = PayloadKEMACEncrAlg(buf[n])
	n++

	encrDataLen := int(uint16(buf[n])<<8 | uint16(buf[n+1]))
	n += 2

	err = checkSize(buf, n+encrDataLen+1)
	if err != nil {
		return 0, err
	}

	encrData := buf[n : n+encrDataLen]
	n += encrDataLen

	p.MacAlg = PayloadKEMACMacAlg(buf[n])
	n++

	macLen, err := p.MacAlg.macLen()
	if err != nil {
		return 0, err
	}

	err = checkSize(buf, n+macLen)
	if err != nil {
		return 0, err
	}

	p.MAC = cloneBytes(buf[n : n+macLen])
	n += macLen

	// encrypted data is read as plain text, since decryption is not supported.
	var first PayloadType
	switch state {
	case parseStatePSK:
		first = PayloadTypeKeyData
	case parseStatePK:
		first = PayloadTypeID
	default:
		return 0, ErrInvalidData{Field: "payload type", Value: int(PayloadTypeKEMAC)}
	}

	p.SubPayloads = nil

	if encrDataLen != 0 {
		subs, sn, err := unmarshalPayloads(encrData, first, parseStateKEMAC)
		if err != nil {
			return 0, err
		}

		if sn != len(encrData) {
			return 0, ErrInvalidData{Field: "encrypted data length", Value: encrDataLen}
		}

		p.SubPayloads = subs
	}

	return n, nil
}

func (p *PayloadKEMAC) marshalSize() int {
	n := 5 + payloadsMarshalSize(p.SubPayloads)
	if macLen, err := p.MacAlg.macLen(); err == nil {
		n += macLen
	}
	return n
}

func (p *PayloadKEMAC) marshalTo(buf []byte, next PayloadType) (int, error) {
	macLen, err := p.MacAlg.macLen()
	if err != nil {
		return 0, err
	}

	if p.MAC != nil && len(p.MAC) != macLen {
		return 0, ErrInvalidData{Field: "MAC length", Value: len(p.MAC)}
	}

	encrDataLen := payloadsMarshalSize(p.SubPayloads)
	if encrDataLen > 0xFFFF {
		return 0, ErrValueTooLong{Field: "encrypted data", Len: encrDataLen, Max: 0xFFFF}
	}

	buf[0] = byte(next)
	buf[1] = byte(p.EncrAlg)
	buf[2] = byte(encrDataLen >> 8)
	buf[3] = byte(encrDataLen)
	n := 4

	n2, err := payloadsMarshalTo(buf[n:], p.SubPayloads)
	if err != nil {
		return 0, err
	}
	n += n2

	buf[n] = byte(p.MacAlg)
	n++

	if p.MAC != nil {
		copy(buf[n:], p.MAC)
	} else {
		clear(buf[n : n+macLen])
	}
	n += macLen

	return n, nil
}

func (p *PayloadKEMAC) clone() Payload {
	return &PayloadKEMAC{
		EncrAlg:     p.EncrAlg,
		SubPayloads: clonePayloads(p.SubPayloads),
		MacAlg:      p.MacAlg,
		MAC:         cloneBytes(p.MAC),
	}
}
