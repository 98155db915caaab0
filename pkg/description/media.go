// Package description contains objects to describe streams protected with MIKEY-negotiated keys.
package description

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	psdp "github.com/pion/sdp/v3"

	"github.com/bluenviron/gomikey/pkg/mikey"
)

func getAttribute(attributes []psdp.Attribute, key string) string {
	for _, attr := range attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

func isAlphaNumeric(v string) bool {
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// MediaType is the type of a media stream.
type MediaType string

// media types.
const (
	MediaTypeVideo       MediaType = "video"
	MediaTypeAudio       MediaType = "audio"
	MediaTypeApplication MediaType = "application"
)

// Media is a media stream.
type Media struct {
	// Media type.
	Type MediaType

	// Media ID (optional).
	ID string

	// Whether the media is protected with SRTP (RTP/SAVP profile).
	Secure bool

	// Control attribute.
	Control string

	// RTP payload types.
	PayloadTypes []uint8

	// Media-level key management message (optional).
	// It overrides the session-level one.
	KeyMgmt *mikey.Message
}

// Unmarshal decodes the media from the SDP format.
func (m *Media) Unmarshal(md *psdp.MediaDescription) error {
	m.Type = MediaType(md.MediaName.Media)

	m.ID = getAttribute(md.Attributes, "mid")
	if m.ID != "" && !isAlphaNumeric(m.ID) {
		return fmt.Errorf("invalid mid: %v", m.ID)
	}

	switch strings.Join(md.MediaName.Protos, "/") {
	case "RTP/AVP", "RTP/AVPF":
		m.Secure = false

	case "RTP/SAVP", "RTP/SAVPF":
		m.Secure = true

	default:
		return fmt.Errorf("unsupported protocol: %v", strings.Join(md.MediaName.Protos, "/"))
	}

	m.Control = getAttribute(md.Attributes, "control")

	m.PayloadTypes = nil
	for _, payloadType := range md.MediaName.Formats {
		tmp, err := strconv.ParseUint(payloadType, 10, 8)
		if err != nil {
			return err
		}
		m.PayloadTypes = append(m.PayloadTypes, uint8(tmp))
	}

	if m.PayloadTypes == nil {
		return fmt.Errorf("no formats found")
	}

	var err error
	m.KeyMgmt, err = unmarshalKeyMgmt(md.Attributes)
	if err != nil {
		return err
	}

	return nil
}

// Marshal encodes the media in SDP format.
func (m Media) Marshal() (*psdp.MediaDescription, error) {
	md := &psdp.MediaDescription{
		MediaName: psdp.MediaName{
			Media:  string(m.Type),
			Protos: []string{"RTP", "AVP"},
		},
	}

	if m.Secure {
		md.MediaName.Protos = []string{"RTP", "SAVP"}
	}

	for _, typ := range m.PayloadTypes {
		md.MediaName.Formats = append(md.MediaName.Formats, strconv.FormatUint(uint64(typ), 10))
	}

	if m.ID != "" {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "mid",
			Value: m.ID,
		})
	}

	md.Attributes = append(md.Attributes, psdp.Attribute{
		Key:   "control",
		Value: m.Control,
	})

	if m.KeyMgmt != nil {
		attr, err := marshalKeyMgmt(m.KeyMgmt)
		if err != nil {
			return nil, err
		}
		md.Attributes = append(md.Attributes, attr)
	}

	return md, nil
}
