// Package headers contains the KeyMgmt header, used to transport MIKEY messages over RTSP.
package headers

import (
	"fmt"
	"strings"

	"github.com/bluenviron/gomikey/pkg/base"
	"github.com/bluenviron/gomikey/pkg/mikey"
)

// KeyMgmtProtocolMIKEY is the key management protocol identifier of MIKEY.
const KeyMgmtProtocolMIKEY = "mikey"

// keyMgmtParams splits a KeyMgmt value into its parameters.
// Values can be enclosed in double quotes, in order to contain semicolons.
func keyMgmtParams(v string) (map[string]string, error) {
	ret := make(map[string]string)
	rest := v

	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			return ret, nil
		}

		i := strings.IndexAny(rest, "=;")
		if i < 0 || rest[i] != '=' {
			return nil, fmt.Errorf("invalid parameter in '%s'", v)
		}

		key := rest[:i]
		rest = rest[i+1:]

		var val string

		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quoted value in '%s'", v)
			}
			val = rest[1 : 1+end]
			rest = rest[2+end:]
		} else {
			end := strings.IndexByte(rest, ';')
			if end < 0 {
				end = len(rest)
			}
			val = rest[:end]
			rest = rest[end:]
		}

		if _, ok := ret[key]; ok {
			return nil, fmt.Errorf("parameter '%s' provided multiple times", key)
		}
		ret[key] = val

		rest = strings.TrimPrefix(rest, ";")
	}
}

// KeyMgmt is a KeyMgmt header.
// Specification: RFC4567, section 4.2
type KeyMgmt struct {
	URL          string
	MikeyMessage *mikey.Message
}

// Unmarshal decodes a KeyMgmt header.
func (h *KeyMgmt) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	kvs, err := keyMgmtParams(v[0])
	if err != nil {
		return err
	}

	var tmp KeyMgmt
	protocolProvided := false
	uriProvided := false

	for k, v := range kvs {
		switch k {
		case "prot":
			if v != KeyMgmtProtocolMIKEY {
				return fmt.Errorf("unsupported protocol: %v", v)
			}
			protocolProvided = true

		case "uri":
			tmp.URL = v
			uriProvided = true

		case "data":
			tmp.MikeyMessage = &mikey.Message{}
			err = tmp.MikeyMessage.UnmarshalBase64(v)
			if err != nil {
				return fmt.Errorf("invalid data: %w", err)
			}
		}
	}

	if !protocolProvided {
		return fmt.Errorf("protocol not provided")
	}

	if !uriProvided {
		return fmt.Errorf("URI not provided")
	}

	if tmp.MikeyMessage == nil {
		return fmt.Errorf("mikey message not provided")
	}

	*h = tmp
	return nil
}

// Marshal encodes a KeyMgmt header.
func (h KeyMgmt) Marshal() (base.HeaderValue, error) {
	if h.MikeyMessage == nil {
		return nil, fmt.Errorf("mikey message not provided")
	}

	encData, err := h.MikeyMessage.MarshalBase64()
	if err != nil {
		return nil, err
	}

	return base.HeaderValue{`prot=` + KeyMgmtProtocolMIKEY + `;uri="` + h.URL + `";data="` + encData + `"`}, nil
}
