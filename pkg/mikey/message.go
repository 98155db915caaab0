// Package mikey contains functions to decode and encode MIKEY messages.
package mikey

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/bluenviron/gomikey/pkg/ntp"
)

// Append is the index that appends an item at the end of a sequence.
const Append = -1

// maximum number of crypto sessions that fits into the header.
const maxCS = 0xFF

// Message is a MIKEY message.
type Message struct {
	Header   Header
	Payloads []Payload
}

// NewMessage allocates a Message with a zeroed header.
func NewMessage() *Message {
	return &Message{}
}

// SetInfo sets the header fields. Crypto sessions are not modified.
func (m *Message) SetInfo(
	version uint8,
	dataType DataType,
	v bool,
	prfFunc PRFFunc,
	csbID uint32,
	mapType CSIDMapType,
) {
	m.Header.Version = version
	m.Header.DataType = dataType
	m.Header.V = v
	m.Header.PRFFunc = prfFunc
	m.Header.CSBID = csbID
	m.Header.CSIDMapType = mapType
}

func checkInsertIndex(idx int, l int) error {
	if idx == Append {
		return nil
	}
	if idx < 0 || idx > l {
		return ErrIndexOutOfRange{Index: idx, Len: l}
	}
	return nil
}

// NumCS returns the number of crypto sessions.
func (m *Message) NumCS() int {
	return len(m.Header.CSIDMapInfo)
}

// CS returns the crypto session at the given index.
func (m *Message) CS(idx int) (*SRTPIDEntry, error) {
	if err := checkIndex(idx, len(m.Header.CSIDMapInfo)); err != nil {
		return nil, err
	}
	return &m.Header.CSIDMapInfo[idx], nil
}

// AddCSSRTP appends a SRTP crypto session.
func (m *Message) AddCSSRTP(policyNo uint8, ssrc uint32, roc uint32) error {
	return m.InsertCSSRTP(Append, SRTPIDEntry{
		PolicyNo: policyNo,
		SSRC:     ssrc,
		ROC:      roc,
	})
}

// InsertCSSRTP inserts a SRTP crypto session at the given index, or appends it when idx is Append.
func (m *Message) InsertCSSRTP(idx int, entry SRTPIDEntry) error {
	if err := checkInsertIndex(idx, len(m.Header.CSIDMapInfo)); err != nil {
		return err
	}

	if len(m.Header.CSIDMapInfo) >= maxCS {
		return ErrValueTooLong{Field: "crypto session map", Len: len(m.Header.CSIDMapInfo) + 1, Max: maxCS}
	}

	if idx == Append {
		m.Header.CSIDMapInfo = append(m.Header.CSIDMapInfo, entry)
	} else {
		m.Header.CSIDMapInfo = append(m.Header.CSIDMapInfo[:idx],
			append([]SRTPIDEntry{entry}, m.Header.CSIDMapInfo[idx:]...)...)
	}

	return nil
}

// ReplaceCSSRTP replaces the SRTP crypto session at the given index.
func (m *Message) ReplaceCSSRTP(idx int, entry SRTPIDEntry) error {
	if err := checkIndex(idx, len(m.Header.CSIDMapInfo)); err != nil {
		return err
	}
	m.Header.CSIDMapInfo[idx] = entry
	return nil
}

// RemoveCSSRTP removes the SRTP crypto session at the given index.
func (m *Message) RemoveCSSRTP(idx int) error {
	if err := checkIndex(idx, len(m.Header.CSIDMapInfo)); err != nil {
		return err
	}
	m.Header.CSIDMapInfo = append(m.Header.CSIDMapInfo[:idx], m.Header.CSIDMapInfo[idx+1:]...)
	if len(m.Header.CSIDMapInfo) == 0 {
		m.Header.CSIDMapInfo = nil
	}
	return nil
}

// NumPayloads returns the number of payloads.
func (m *Message) NumPayloads() int {
	return len(m.Payloads)
}

// Payload returns the payload at the given index.
func (m *Message) Payload(idx int) (Payload, error) {
	if err := checkIndex(idx, len(m.Payloads)); err != nil {
		return nil, err
	}
	return m.Payloads[idx], nil
}

// FindPayload returns the nth payload of the given type, or nil if there is none.
func (m *Message) FindPayload(typ PayloadType, nth int) Payload {
	for _, pl := range m.Payloads {
		if pl.Type() == typ {
			if nth == 0 {
				return pl
			}
			nth--
		}
	}
	return nil
}

// AddPayload appends a payload. The message takes ownership of it.
func (m *Message) AddPayload(pl Payload) error {
	return m.InsertPayload(Append, pl)
}

// InsertPayload inserts a payload at the given index, or appends it when idx is Append.
// The message takes ownership of it.
func (m *Message) InsertPayload(idx int, pl Payload) error {
	if pl == nil {
		return ErrNilPayload
	}

	if err := checkInsertIndex(idx, len(m.Payloads)); err != nil {
		return err
	}

	if idx == Append {
		m.Payloads = append(m.Payloads, pl)
	} else {
		m.Payloads = append(m.Payloads[:idx], append([]Payload{pl}, m.Payloads[idx:]...)...)
	}

	return nil
}

// ReplacePayload replaces the payload at the given index.
func (m *Message) ReplacePayload(idx int, pl Payload) error {
	if pl == nil {
		return ErrNilPayload
	}

	if err := checkIndex(idx, len(m.Payloads)); err != nil {
		return err
	}

	m.Payloads[idx] = pl
	return nil
}

// RemovePayload removes the payload at the given index.
func (m *Message) RemovePayload(idx int) error {
	if err := checkIndex(idx, len(m.Payloads)); err != nil {
		return err
	}
	m.Payloads = append(m.Payloads[:idx], m.Payloads[idx+1:]...)
	if len(m.Payloads) == 0 {
		m.Payloads = nil
	}
	return nil
}

// AddPKE appends a PKE payload.
func (m *Message) AddPKE(c PayloadPKECacheType, data []byte) error {
	pl := &PayloadPKE{}
	err := pl.Set(c, data)
	if err != nil {
		return err
	}
	return m.AddPayload(pl)
}

// AddT appends a T payload.
func (m *Message) AddT(tsType PayloadTTSType, tsValue uint64) error {
	pl := &PayloadT{}
	err := pl.Set(tsType, tsValue)
	if err != nil {
		return err
	}
	return m.AddPayload(pl)
}

// AddTNowNTPUTC appends a T payload containing the current time.
func (m *Message) AddTNowNTPUTC() error {
	return m.AddT(PayloadTTSTypeNTPUTC, ntp.Encode(time.Now()))
}

// AddRAND appends a RAND payload.
func (m *Message) AddRAND(data []byte) error {
	pl := &PayloadRAND{}
	err := pl.Set(data)
	if err != nil {
		return err
	}
	return m.AddPayload(pl)
}

// AddRANDLen appends a RAND payload filled with random bytes.
func (m *Message) AddRANDLen(l int) error {
	if l < 1 || l > 0xFF {
		return ErrInvalidData{Field: "RAND length", Value: l}
	}

	data := make([]byte, l)
	_, err := rand.Read(data)
	if err != nil {
		return err
	}

	return m.AddRAND(data)
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	ret := &Message{
		Header:   m.Header,
		Payloads: clonePayloads(m.Payloads),
	}

	if m.Header.CSIDMapInfo != nil {
		ret.Header.CSIDMapInfo = make([]SRTPIDEntry, len(m.Header.CSIDMapInfo))
		copy(ret.Header.CSIDMapInfo, m.Header.CSIDMapInfo)
	}

	return ret
}

// Unmarshal decodes a Message.
// When an error is returned, the message is left untouched.
func (m *Message) Unmarshal(buf []byte) error {
	var tmp Message

	n, nextPayloadType, err := tmp.Header.unmarshal(buf)
	if err != nil {
		return err
	}

	err = tmp.Header.validate()
	if err != nil {
		return err
	}

	payloads, n2, err := unmarshalPayloads(buf[n:], nextPayloadType, tmp.Header.DataType.parseState())
	if err != nil {
		return err
	}
	n += n2

	if n < len(buf) {
		return ErrInvalidData{Field: "trailing bytes", Value: len(buf) - n}
	}

	tmp.Payloads = payloads
	*m = tmp

	return nil
}

// UnmarshalBase64 decodes a base64-encoded Message.
func (m *Message) UnmarshalBase64(s string) error {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid base64: %w", err)
	}
	return m.Unmarshal(buf)
}

func (m *Message) marshalSize() int {
	return m.Header.marshalSize() + payloadsMarshalSize(m.Payloads)
}

// Marshal encodes a Message.
func (m *Message) Marshal() ([]byte, error) {
	buf := make([]byte, m.marshalSize())

	var nextPayloadType PayloadType
	if len(m.Payloads) != 0 && m.Payloads[0] != nil {
		nextPayloadType = m.Payloads[0].Type()
	}

	n, err := m.Header.marshalTo(buf, nextPayloadType)
	if err != nil {
		return nil, err
	}

	_, err = payloadsMarshalTo(buf[n:], m.Payloads)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// MarshalBase64 encodes a Message in base64 format.
func (m *Message) MarshalBase64() (string, error) {
	buf, err := m.Marshal()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
