package mikey

// PayloadOpaque is a payload whose content is not decoded.
// It is used for DH, SIGN, ID, CERT, CHASH, V, ERR and general extension
// payloads, that are recognized and length-checked but not interpreted.
//
// Data contains the payload without the next payload field, except for
// SIGN payloads, which do not have it.
type PayloadOpaque struct {
	Kind PayloadType
	Data []byte
}

// Type implements Payload.
func (p *PayloadOpaque) Type() PayloadType {
	return p.Kind
}

func (p *PayloadOpaque) headerLen() int {
	if p.Kind == PayloadTypeSIGN {
		return 0
	}
	return 1
}

func opaqueKeyValidityLen(buf []byte, n int) (int, error) {
	err := checkSize(buf, n+1)
	if err != nil {
		return 0, err
	}

	kv := PayloadKeyDataKV(buf[n] & 0x0F)
	n++

	fields := 0
	switch kv {
	case PayloadKeyDataKVNULL:
	case PayloadKeyDataKVSPI:
		fields = 1
	case PayloadKeyDataKVInterval:
		fields = 2
	default:
		return 0, ErrInvalidData{Field: "key validity type", Value: int(kv)}
	}

	for i := 0; i < fields; i++ {
		_, n, err = readKeyValidityField(buf, n)
		if err != nil {
			return 0, err
		}
	}

	return n, nil
}

// opaqueLen returns the size of a payload of the given type, including the
// next payload field.
func opaqueLen(kind PayloadType, buf []byte) (int, error) {
	switch kind {
	case PayloadTypeDH:
		err := checkSize(buf, 2)
		if err != nil {
			return 0, err
		}

		var dhLen int
		switch buf[1] {
		case 0: // OAKLEY 5
			dhLen = 1536 / 8
		case 1: // OAKLEY 1
			dhLen = 768 / 8
		case 2: // OAKLEY 2
			dhLen = 1024 / 8
		default:
			return 0, ErrInvalidData{Field: "DH group", Value: int(buf[1])}
		}

		err = checkSize(buf, 2+dhLen)
		if err != nil {
			return 0, err
		}

		return opaqueKeyValidityLen(buf, 2+dhLen)

	case PayloadTypeSIGN:
		err := checkSize(buf, 2)
		if err != nil {
			return 0, err
		}

		sigLen := int(uint16(buf[0])<<8|uint16(buf[1])) & 0x0FFF

		err = checkSize(buf, 2+sigLen)
		if err != nil {
			return 0, err
		}
		return 2 + sigLen, nil

	case PayloadTypeID, PayloadTypeCERT, PayloadTypeGenExt:
		err := checkSize(buf, 4)
		if err != nil {
			return 0, err
		}

		dataLen := int(uint16(buf[2])<<8 | uint16(buf[3]))

		err = checkSize(buf, 4+dataLen)
		if err != nil {
			return 0, err
		}
		return 4 + dataLen, nil

	case PayloadTypeCHASH:
		err := checkSize(buf, 2)
		if err != nil {
			return 0, err
		}

		var hashLen int
		switch buf[1] {
		case 0: // SHA-1
			hashLen = 160 / 8
		case 1: // MD5
			hashLen = 128 / 8
		default:
			return 0, ErrInvalidData{Field: "hash function", Value: int(buf[1])}
		}

		err = checkSize(buf, 2+hashLen)
		if err != nil {
			return 0, err
		}
		return 2 + hashLen, nil

	case PayloadTypeV:
		err := checkSize(buf, 2)
		if err != nil {
			return 0, err
		}

		verLen, err := PayloadKEMACMacAlg(buf[1]).macLen()
		if err != nil {
			return 0, ErrInvalidData{Field: "verification algorithm", Value: int(buf[1])}
		}

		err = checkSize(buf, 2+verLen)
		if err != nil {
			return 0, err
		}
		return 2 + verLen, nil

	case PayloadTypeERR:
		err := checkSize(buf, 4)
		if err != nil {
			return 0, err
		}
		return 4, nil
	}

	return 0, ErrUnsupportedPayloadType{Type: kind}
}

func (p *PayloadOpaque) unmarshal(buf []byte, _ parseState) (int, error) {
	n, err := opaqueLen(p.Kind, buf)
	if err != nil {
		return 0, err
	}

	p.Data = cloneBytes(buf[p.headerLen():n])
	return n, nil
}

func (p *PayloadOpaque) marshalSize() int {
	return p.headerLen() + len(p.Data)
}

func (p *PayloadOpaque) marshalTo(buf []byte, next PayloadType) (int, error) {
	n := 0
	if p.headerLen() != 0 {
		buf[0] = byte(next)
		n++
	}
	n += copy(buf[n:], p.Data)

	// the content must describe its own length
	l, err := opaqueLen(p.Kind, buf[:n])
	if err != nil {
		return 0, err
	}
	if l != n {
		return 0, ErrInvalidData{Field: "payload length", Value: n}
	}

	return n, nil
}

func (p *PayloadOpaque) clone() Payload {
	return &PayloadOpaque{
		Kind: p.Kind,
		Data: cloneBytes(p.Data),
	}
}
