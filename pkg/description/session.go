package description

import (
	"fmt"

	psdp "github.com/pion/sdp/v3"

	"github.com/bluenviron/gomikey/pkg/mikey"
)

func atLeastOneHasMID(medias []*Media) bool {
	for _, media := range medias {
		if media.ID != "" {
			return true
		}
	}
	return false
}

func atLeastOneDoesntHaveMID(medias []*Media) bool {
	for _, media := range medias {
		if media.ID == "" {
			return true
		}
	}
	return false
}

func hasMediaWithID(medias []*Media, id string) bool {
	for _, media := range medias {
		if media.ID == id {
			return true
		}
	}
	return false
}

// Session is the description of a stream.
type Session struct {
	// title of the stream (optional).
	Title string

	// session-level key management message (optional).
	KeyMgmt *mikey.Message

	// available media streams.
	Medias []*Media
}

// Unmarshal decodes the description from SDP.
func (d *Session) Unmarshal(ssd *psdp.SessionDescription) error {
	d.Title = string(ssd.SessionName)
	if d.Title == " " {
		d.Title = ""
	}

	var err error
	d.KeyMgmt, err = unmarshalKeyMgmt(ssd.Attributes)
	if err != nil {
		return err
	}

	d.Medias = make([]*Media, len(ssd.MediaDescriptions))

	for i, md := range ssd.MediaDescriptions {
		var m Media
		err = m.Unmarshal(md)
		if err != nil {
			return fmt.Errorf("media %d is invalid: %w", i+1, err)
		}

		if m.ID != "" && hasMediaWithID(d.Medias[:i], m.ID) {
			return fmt.Errorf("duplicate media IDs")
		}

		d.Medias[i] = &m
	}

	if atLeastOneHasMID(d.Medias) && atLeastOneDoesntHaveMID(d.Medias) {
		return fmt.Errorf("media IDs sent partially")
	}

	return nil
}

// Marshal encodes the description in SDP.
func (d Session) Marshal(multicast bool) ([]byte, error) {
	var sessionName psdp.SessionName
	if d.Title != "" {
		sessionName = psdp.SessionName(d.Title)
	} else {
		// RFC 4566: If a session has no meaningful name, the
		// value "s= " SHOULD be used (i.e., a single space as the session name).
		sessionName = psdp.SessionName(" ")
	}

	var address string
	if multicast {
		address = "224.1.0.0"
	} else {
		address = "0.0.0.0"
	}

	sout := &psdp.SessionDescription{
		SessionName: sessionName,
		Origin: psdp.Origin{
			Username:       "-",
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: "127.0.0.1",
		},
		ConnectionInformation: &psdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &psdp.Address{Address: address},
		},
		TimeDescriptions: []psdp.TimeDescription{
			{Timing: psdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: make([]*psdp.MediaDescription, len(d.Medias)),
	}

	if d.KeyMgmt != nil {
		attr, err := marshalKeyMgmt(d.KeyMgmt)
		if err != nil {
			return nil, err
		}
		sout.Attributes = append(sout.Attributes, attr)
	}

	for i, media := range d.Medias {
		var err error
		sout.MediaDescriptions[i], err = media.Marshal()
		if err != nil {
			return nil, fmt.Errorf("media %d is invalid: %w", i+1, err)
		}
	}

	return sout.Marshal()
}

// MediaKeyMgmt returns the key management message of a media.
// The media-level message has precedence over the session-level one.
func (d Session) MediaKeyMgmt(m *Media) *mikey.Message {
	if m.KeyMgmt != nil {
		return m.KeyMgmt
	}
	return d.KeyMgmt
}

// MediaSRTPParams returns the SRTP parameters of a media.
func (d Session) MediaSRTPParams(m *Media) (*mikey.SRTPParams, error) {
	msg := d.MediaKeyMgmt(m)
	if msg == nil {
		return nil, fmt.Errorf("key management message not provided")
	}

	return msg.SRTPParams()
}
