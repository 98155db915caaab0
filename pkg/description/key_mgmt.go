package description

import (
	"fmt"
	"strings"

	psdp "github.com/pion/sdp/v3"

	"github.com/bluenviron/gomikey/pkg/mikey"
)

const (
	keyMgmtAttributeKey  = "key-mgmt"
	keyMgmtProtocolMIKEY = "mikey"
)

// unmarshalKeyMgmt decodes the first key-mgmt attribute.
// Specification: RFC4567, section 3.1
//
// Attributes with a protocol different than MIKEY are ignored.
func unmarshalKeyMgmt(attributes []psdp.Attribute) (*mikey.Message, error) {
	for _, attr := range attributes {
		if attr.Key != keyMgmtAttributeKey {
			continue
		}

		v := strings.TrimLeft(attr.Value, " ")

		prot, data, ok := strings.Cut(v, " ")
		if !ok || prot != keyMgmtProtocolMIKEY {
			return nil, nil
		}

		var msg mikey.Message
		err := msg.UnmarshalBase64(strings.TrimSpace(data))
		if err != nil {
			return nil, fmt.Errorf("invalid key-mgmt attribute: %w", err)
		}

		return &msg, nil
	}

	return nil, nil
}

func marshalKeyMgmt(msg *mikey.Message) (psdp.Attribute, error) {
	enc, err := msg.MarshalBase64()
	if err != nil {
		return psdp.Attribute{}, err
	}

	return psdp.Attribute{
		Key:   keyMgmtAttributeKey,
		Value: keyMgmtProtocolMIKEY + " " + enc,
	}, nil
}
