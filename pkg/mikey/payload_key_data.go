package mikey

// PayloadKeyDataType is a key data type.
type PayloadKeyDataType uint8

// RFC3830, table 6.13.a
const (
	PayloadKeyDataTypeTGK PayloadKeyDataType = 0
	PayloadKeyDataTypeTEK PayloadKeyDataType = 2
)

// the lowest bit of the type field tells whether a salt is present.
const keyDataTypeSaltBit = 1

// PayloadKeyDataKV is a key validity type.
type PayloadKeyDataKV uint8

// RFC3830, table 6.13.b
const (
	PayloadKeyDataKVNULL     PayloadKeyDataKV = 0
	PayloadKeyDataKVSPI      PayloadKeyDataKV = 1
	PayloadKeyDataKVInterval PayloadKeyDataKV = 2
)

// PayloadKeyData is a key data payload.
//
// SPI is used when KV is PayloadKeyDataKVSPI,
// ValidFrom and ValidTo are used when KV is PayloadKeyDataKVInterval.
type PayloadKeyData struct {
	KeyType   PayloadKeyDataType
	KeyData   []byte
	SaltData  []byte
	KV        PayloadKeyDataKV
	SPI       []byte
	ValidFrom []byte
	ValidTo   []byte
}

// SetKey sets the key type and a copy of the key.
func (p *PayloadKeyData) SetKey(typ PayloadKeyDataType, key []byte) error {
	if typ != PayloadKeyDataTypeTGK && typ != PayloadKeyDataTypeTEK {
		return ErrInvalidData{Field: "key type", Value: int(typ)}
	}
	if len(key) == 0 {
		return ErrInvalidData{Field: "key data length", Value: 0}
	}
	if len(key) > 0xFFFF {
		return ErrValueTooLong{Field: "key data", Len: len(key), Max: 0xFFFF}
	}

	p.KeyType = typ
	p.KeyData = cloneBytes(key)
	return nil
}

// SetSalt sets a copy of the salt. A nil or empty salt removes it.
func (p *PayloadKeyData) SetSalt(salt []byte) error {
	if len(salt) > 0xFFFF {
		return ErrValueTooLong{Field: "salt data", Len: len(salt), Max: 0xFFFF}
	}

	p.SaltData = cloneBytes(salt)
	return nil
}

// SetSPI sets the SPI/MKI key validity, removing any validity interval.
func (p *PayloadKeyData) SetSPI(spi []byte) error {
	if len(spi) > 0xFF {
		return ErrValueTooLong{Field: "SPI", Len: len(spi), Max: 0xFF}
	}

	p.KV = PayloadKeyDataKVSPI
	p.SPI = cloneBytes(spi)
	p.ValidFrom = nil
	p.ValidTo = nil
	return nil
}

// SetInterval sets the validity interval, removing any SPI/MKI.
func (p *PayloadKeyData) SetInterval(validFrom []byte, validTo []byte) error {
	if len(validFrom) > 0xFF {
		return ErrValueTooLong{Field: "valid from", Len: len(validFrom), Max: 0xFF}
	}
	if len(validTo) > 0xFF {
		return ErrValueTooLong{Field: "valid to", Len: len(validTo), Max: 0xFF}
	}

	p.KV = PayloadKeyDataKVInterval
	p.SPI = nil
	p.ValidFrom = cloneBytes(validFrom)
	p.ValidTo = cloneBytes(validTo)
	return nil
}

// Type implements Payload.
func (*PayloadKeyData) Type() PayloadType {
	return PayloadTypeKeyData
}

func readKeyValidityField(buf []byte, n int) ([]byte, int, error) {
	err := checkSize(buf, n+1)
	if err != nil {
		return nil, 0, err
	}

	l := int(buf[n])
	n++

	err = checkSize(buf, n+l)
	if err != nil {
		return nil, 0, err
	}

	return cloneBytes(buf[n : n+l]), n + l, nil
}

func (p *PayloadKeyData) unmarshal(buf []byte, _ parseState) (int, error) {
	err := checkSize(buf, 4)
	if err != nil {
		return 0, err
	}

	n := 1
	rawType := buf[n] >> 4
	p.KV = PayloadKeyDataKV(buf[n] & 0b00001111)
	n++

	if rawType > 3 {
		return 0, ErrInvalidData{Field: "key type", Value: int(rawType)}
	}
	p.KeyType = PayloadKeyDataType(rawType &^ keyDataTypeSaltBit)

	keyDataLen := int(uint16(buf[n])<<8 | uint16(buf[n+1]))
	n += 2

	if keyDataLen == 0 {
		return 0, ErrInvalidData{Field: "key data length", Value: 0}
	}

	err = checkSize(buf, n+keyDataLen)
	if err != nil {
		return 0, err
	}

	p.KeyData = cloneBytes(buf[n : n+keyDataLen])
	n += keyDataLen

	p.SaltData = nil

	if (rawType & keyDataTypeSaltBit) != 0 {
		err = checkSize(buf, n+2)
		if err != nil {
			return 0, err
		}

		saltLen := int(uint16(buf[n])<<8 | uint16(buf[n+1]))
		n += 2

		err = checkSize(buf, n+saltLen)
		if err != nil {
			return 0, err
		}

		p.SaltData = cloneBytes(buf[n : n+saltLen])
		n += saltLen
	}

	p.SPI = nil
	p.ValidFrom = nil
	p.ValidTo = nil

	switch p.KV {
	case PayloadKeyDataKVNULL:

	case PayloadKeyDataKVSPI:
		p.SPI, n, err = readKeyValidityField(buf, n)
		if err != nil {
			return 0, err
		}

	case PayloadKeyDataKVInterval:
		p.ValidFrom, n, err = readKeyValidityField(buf, n)
		if err != nil {
			return 0, err
		}

		p.ValidTo, n, err = readKeyValidityField(buf, n)
		if err != nil {
			return 0, err
		}

	default:
		return 0, ErrInvalidData{Field: "key validity type", Value: int(p.KV)}
	}

	return n, nil
}

func (p *PayloadKeyData) marshalSize() int {
	n := 4 + len(p.KeyData)
	if len(p.SaltData) != 0 {
		n += 2 + len(p.SaltData)
	}

	switch p.KV {
	case PayloadKeyDataKVSPI:
		n += 1 + len(p.SPI)

	case PayloadKeyDataKVInterval:
		n += 2 + len(p.ValidFrom) + len(p.ValidTo)
	}

	return n
}

func (p *PayloadKeyData) validate() error {
	if p.KeyType != PayloadKeyDataTypeTGK && p.KeyType != PayloadKeyDataTypeTEK {
		return ErrInvalidData{Field: "key type", Value: int(p.KeyType)}
	}
	if len(p.KeyData) == 0 {
		return ErrInvalidData{Field: "key data length", Value: 0}
	}
	if len(p.KeyData) > 0xFFFF {
		return ErrValueTooLong{Field: "key data", Len: len(p.KeyData), Max: 0xFFFF}
	}
	if len(p.SaltData) > 0xFFFF {
		return ErrValueTooLong{Field: "salt data", Len: len(p.SaltData), Max: 0xFFFF}
	}

	switch p.KV {
	case PayloadKeyDataKVNULL:

	case PayloadKeyDataKVSPI:
		if len(p.SPI) > 0xFF {
			return ErrValueTooLong{Field: "SPI", Len: len(p.SPI), Max: 0xFF}
		}

	case PayloadKeyDataKVInterval:
		if len(p.ValidFrom) > 0xFF {
			return ErrValueTooLong{Field: "valid from", Len: len(p.ValidFrom), Max: 0xFF}
		}
		if len(p.ValidTo) > 0xFF {
			return ErrValueTooLong{Field: "valid to", Len: len(p.ValidTo), Max: 0xFF}
		}

	default:
		return ErrInvalidData{Field: "key validity type", Value: int(p.KV)}
	}

	return nil
}

func (p *PayloadKeyData) marshalTo(buf []byte, next PayloadType) (int, error) {
	err := p.validate()
	if err != nil {
		return 0, err
	}

	rawType := byte(p.KeyType)
	if len(p.SaltData) != 0 {
		rawType |= keyDataTypeSaltBit
	}

	buf[0] = byte(next)
	buf[1] = rawType<<4 | byte(p.KV)

	keyDataLen := len(p.KeyData)
	buf[2] = byte(keyDataLen >> 8)
	buf[3] = byte(keyDataLen)
	n := 4

	n += copy(buf[n:], p.KeyData)

	if len(p.SaltData) != 0 {
		saltLen := len(p.SaltData)
		buf[n] = byte(saltLen >> 8)
		buf[n+1] = byte(saltLen)
		n += 2
		n += copy(buf[n:], p.SaltData)
	}

	switch p.KV {
	case PayloadKeyDataKVSPI:
		buf[n] = byte(len(p.SPI))
		n++
		n += copy(buf[n:], p.SPI)

	case PayloadKeyDataKVInterval:
		buf[n] = byte(len(p.ValidFrom))
		n++
		n += copy(buf[n:], p.ValidFrom)
		buf[n] = byte(len(p.ValidTo))
		n++
		n += copy(buf[n:], p.ValidTo)
	}

	return n, nil
}

func (p *PayloadKeyData) clone() Payload {
	return &PayloadKeyData{
		KeyType:   p.KeyType,
		KeyData:   cloneBytes(p.KeyData),
		SaltData:  cloneBytes(p.SaltData),
		KV:        p.KV,
		SPI:       cloneBytes(p.SPI),
		ValidFrom: cloneBytes(p.ValidFrom),
		ValidTo:   cloneBytes(p.ValidTo),
	}
}
