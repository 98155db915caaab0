package mikey

// PayloadRAND is a payload with random data.
type PayloadRAND struct {
	Data []byte
}

// Set sets a copy of the random data.
func (p *PayloadRAND) Set(data []byte) error {
	if len(data) == 0 {
		return ErrInvalidData{Field: "RAND length", Value: 0}
	}
	if len(data) > 0xFF {
		return ErrValueTooLong{Field: "random data", Len: len(data), Max: 0xFF}
	}

	p.Data = cloneBytes(data)
	return nil
}

// Type implements Payload.
func (*PayloadRAND) Type() PayloadType {
	return PayloadTypeRAND
}

func (p *PayloadRAND) unmarshal(buf []byte, _ parseState) (int, error) {
	err := checkSize(buf, 2)
	if err != nil {
		return 0, err
	}

	n := 1
	dataLen := int(buf[n])
	n++

	err = checkSize(buf, n+dataLen)
	if err != nil {
		return 0, err
	}

	p.Data = cloneBytes(buf[n : n+dataLen])
	n += dataLen

	return n, nil
}

func (p *PayloadRAND) marshalSize() int {
	return 2 + len(p.Data)
}

func (p *PayloadRAND) marshalTo(buf []byte, next PayloadType) (int, error) {
	if len(p.Data) > 0xFF {
		return 0, ErrValueTooLong{Field: "random data", Len: len(p.Data), Max: 0xFF}
	}

	buf[0] = byte(next)
	buf[1] = uint8(len(p.Data))
	n := 2
	n += copy(buf[2:], p.Data)
	return n, nil
}

func (p *PayloadRAND) clone() Payload {
	return &PayloadRAND{
		Data: cloneBytes(p.Data),
	}
}
