package mikey

// Version is the only supported protocol version.
const Version = 1

func boolToUint8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// DataType is a message data type.
type DataType uint8

// RFC3830, Table 6.1.a
const (
	DataTypeInitiatorPSK DataType = 0
	DataTypeVerifierPSK  DataType = 1
	DataTypeInitiatorPK  DataType = 2
	DataTypeVerifierPK   DataType = 3
	DataTypeInitiatorDH  DataType = 4
	DataTypeResponderDH  DataType = 5
	DataTypeError        DataType = 6
)

func (t DataType) parseState() parseState {
	switch t {
	case DataTypeInitiatorPSK:
		return parseStatePSK
	case DataTypeInitiatorPK:
		return parseStatePK
	}
	return parseStateOther
}

// PRFFunc is a pseudo-random function.
type PRFFunc uint8

// RFC3830, Table 6.1.c
const (
	PRFFuncMIKEY1 PRFFunc = 0
)

// CSIDMapType is a CS ID map type.
type CSIDMapType uint8

// RFC3830, Table 6.1.d
const (
	CSIDMapTypeSRTPID CSIDMapType = 0
)

// SRTPIDEntry is an entry of a SRTP-ID map.
type SRTPIDEntry struct {
	PolicyNo uint8
	SSRC     uint32
	ROC      uint32
}

// Header is a MIKEY header.
type Header struct {
	Version     uint8
	DataType    DataType
	V           bool
	PRFFunc     PRFFunc
	CSBID       uint32
	CSIDMapType CSIDMapType
	CSIDMapInfo []SRTPIDEntry
}

// unmarshal decodes the header fields without validating them.
func (h *Header) unmarshal(buf []byte) (int, PayloadType, error) {
	err := checkSize(buf, 10)
	if err != nil {
		return 0, 0, err
	}

	n := 0
	h.Version = buf[n]
	n++
	h.DataType = DataType(buf[n])
	n++

	nextPayload := PayloadType(buf[n])
	n++

	h.V = (buf[n] >> 7) != 0
	h.PRFFunc = PRFFunc(buf[n] & 0b01111111)
	n++

	h.CSBID = uint32(buf[n])<<24 | uint32(buf[n+1])<<16 | uint32(buf[n+2])<<8 | uint32(buf[n+3])
	n += 4

	numCS := int(buf[n])
	n++

	h.CSIDMapType = CSIDMapType(buf[n])
	n++

	err = checkSize(buf, n+numCS*9)
	if err != nil {
		return 0, 0, err
	}

	h.CSIDMapInfo = nil
	if numCS != 0 {
		h.CSIDMapInfo = make([]SRTPIDEntry, numCS)
	}

	for i := 0; i < numCS; i++ {
		h.CSIDMapInfo[i].PolicyNo = buf[n]
		n++
		h.CSIDMapInfo[i].SSRC = uint32(buf[n])<<24 | uint32(buf[n+1])<<16 | uint32(buf[n+2])<<8 | uint32(buf[n+3])
		n += 4
		h.CSIDMapInfo[i].ROC = uint32(buf[n])<<24 | uint32(buf[n+1])<<16 | uint32(buf[n+2])<<8 | uint32(buf[n+3])
		n += 4
	}

	return n, nextPayload, nil
}

func (h *Header) validate() error {
	if h.Version != Version {
		return ErrUnsupportedVersion{Version: h.Version}
	}

	if h.CSIDMapType != CSIDMapTypeSRTPID {
		return ErrInvalidData{Field: "CS ID map type", Value: int(h.CSIDMapType)}
	}

	return nil
}

func (h *Header) marshalSize() int {
	return 10 + len(h.CSIDMapInfo)*9
}

func (h *Header) marshalTo(buf []byte, nextPayload PayloadType) (int, error) {
	if len(h.CSIDMapInfo) > 0xFF {
		return 0, ErrValueTooLong{Field: "crypto session map", Len: len(h.CSIDMapInfo), Max: 0xFF}
	}

	if h.PRFFunc > 0b01111111 {
		return 0, ErrInvalidData{Field: "PRF function", Value: int(h.PRFFunc)}
	}

	buf[0] = h.Version
	buf[1] = byte(h.DataType)
	buf[2] = byte(nextPayload)
	buf[3] = boolToUint8(h.V)<<7 | byte(h.PRFFunc)
	buf[4] = byte(h.CSBID >> 24)
	buf[5] = byte(h.CSBID >> 16)
	buf[6] = byte(h.CSBID >> 8)
	buf[7] = byte(h.CSBID)
	buf[8] = byte(len(h.CSIDMapInfo))
	buf[9] = byte(h.CSIDMapType)
	n := 10

	for _, mi := range h.CSIDMapInfo {
		buf[n] = mi.PolicyNo
		buf[n+1] = byte(mi.SSRC >> 24)
		buf[n+2] = byte(mi.SSRC >> 16)
		buf[n+3] = byte(mi.SSRC >> 8)
		buf[n+4] = byte(mi.SSRC)
		buf[n+5] = byte(mi.ROC >> 24)
		buf[n+6] = byte(mi.ROC >> 16)
		buf[n+7] = byte(mi.ROC >> 8)
		buf[n+8] = byte(mi.ROC)
		n += 9
	}

	return n, nil
}
