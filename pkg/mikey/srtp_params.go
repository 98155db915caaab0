package mikey

import (
	"github.com/pion/randutil"
)

// SRTP cipher names.
const (
	SRTPCipherNULL      = "null"
	SRTPCipherAES128ICM = "aes-128-icm"
	SRTPCipherAES256ICM = "aes-256-icm"
	SRTPCipherAES128GCM = "aes-128-gcm"
	SRTPCipherAES256GCM = "aes-256-gcm"
)

// SRTP authentication names.
const (
	SRTPAuthNULL       = "null"
	SRTPAuthHMACSHA132 = "hmac-sha1-32"
	SRTPAuthHMACSHA180 = "hmac-sha1-80"
)

const (
	aes128KeyLen = 16
	aes256KeyLen = 32
	hmac32KeyLen = 4
	hmac80KeyLen = 10
)

type srtpCipher struct {
	encrAlg PayloadKEMACEncrAlg
	authAlg PayloadKEMACMacAlg
	keyLen  uint8
	aead    bool
}

var srtpCiphers = map[string]srtpCipher{
	SRTPCipherAES128ICM: {PayloadKEMACEncrAlgAESCM128, PayloadKEMACMacAlgHMACSHA1160, aes128KeyLen, false},
	SRTPCipherAES256ICM: {PayloadKEMACEncrAlgAESCM128, PayloadKEMACMacAlgHMACSHA1160, aes256KeyLen, false},
	SRTPCipherAES128GCM: {PayloadKEMACEncrAlgAESGCM128, PayloadKEMACMacAlgNULL, aes128KeyLen, true},
	SRTPCipherAES256GCM: {PayloadKEMACEncrAlgAESGCM128, PayloadKEMACMacAlgNULL, aes256KeyLen, true},
}

var srtpAuthKeyLens = map[string]uint8{
	SRTPAuthHMACSHA132: hmac32KeyLen,
	SRTPAuthHMACSHA180: hmac80KeyLen,
}

// SRTPParams are the SRTP parameters carried by a MIKEY message.
type SRTPParams struct {
	// Cipher name. It can be empty when the message only carries a key.
	Cipher string

	// Authentication name. It can be empty when the message only carries a key.
	Auth string

	// Master key, followed by the master salt.
	Key []byte

	// Master key identifier. Optional.
	MKI []byte

	// Rollover counter of the first crypto session.
	// It is filled by Message.SRTPParams and ignored by NewMessageFromSRTPParams,
	// since crypto sessions are added by the caller.
	ROC uint32
}

// NewMessageFromSRTPParams generates a PSK-init message that carries the given SRTP parameters.
// Keys are transported in clear, therefore the message must be sent over a secure channel.
func NewMessageFromSRTPParams(params SRTPParams) (*Message, error) {
	if len(params.Key) == 0 {
		return nil, ErrSRTPKeyMissing
	}

	var cipher srtpCipher
	if params.Cipher != "" {
		var ok bool
		cipher, ok = srtpCiphers[params.Cipher]
		if !ok {
			return nil, ErrUnsupportedCipher{Name: params.Cipher}
		}
	} else {
		cipher.authAlg = PayloadKEMACMacAlgHMACSHA1160
	}

	var authKeyLen uint8
	if params.Auth != "" {
		if cipher.aead {
			authKeyLen = 0
		} else {
			var ok bool
			authKeyLen, ok = srtpAuthKeyLens[params.Auth]
			if !ok {
				return nil, ErrUnsupportedAuth{Name: params.Auth}
			}
		}
	}

	csbID, err := randutil.CryptoUint64()
	if err != nil {
		return nil, err
	}

	m := NewMessage()
	m.SetInfo(Version, DataTypeInitiatorPSK, false, PRFFuncMIKEY1, uint32(csbID), CSIDMapTypeSRTPID)

	if params.Cipher != "" || params.Auth != "" {
		err = m.AddTNowNTPUTC()
		if err != nil {
			return nil, err
		}

		err = m.AddRANDLen(16)
		if err != nil {
			return nil, err
		}

		sp := &PayloadSP{}
		sp.Set(0, PayloadSPProtTypeSRTP)

		var params2 []PayloadSPPolicyParam

		if params.Cipher != "" {
			params2 = append(params2,
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeEncrAlg, []byte{byte(cipher.encrAlg)}},
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeSessionEncrKeyLen, []byte{cipher.keyLen}},
			)
		}

		if params.Auth != "" {
			params2 = append(params2,
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeAuthAlg, []byte{byte(cipher.authAlg)}},
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeSessionAuthKeyLen, []byte{authKeyLen}},
			)
		}

		if params.Cipher != "" {
			params2 = append(params2,
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeSRTPEncrOffOn, []byte{1}},
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeSRTCPEncrOffOn, []byte{1}},
			)
		}

		if params.Auth != "" {
			params2 = append(params2,
				PayloadSPPolicyParam{PayloadSPPolicyParamTypeSRTPAuthOffOn, []byte{1}},
			)
		}

		for _, p := range params2 {
			err = sp.AddParam(p.Type, p.Value)
			if err != nil {
				return nil, err
			}
		}

		err = m.AddPayload(sp)
		if err != nil {
			return nil, err
		}
	}

	keyData := &PayloadKeyData{}
	err = keyData.SetKey(PayloadKeyDataTypeTEK, params.Key)
	if err != nil {
		return nil, err
	}

	if len(params.MKI) != 0 {
		err = keyData.SetSPI(params.MKI)
		if err != nil {
			return nil, err
		}
	}

	kemac := &PayloadKEMAC{}
	kemac.Set(PayloadKEMACEncrAlgNULL, PayloadKEMACMacAlgNULL)

	err = kemac.AddSubPayload(keyData)
	if err != nil {
		return nil, err
	}

	err = m.AddPayload(kemac)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Message) findSP(policyNo uint8) *PayloadSP {
	for _, pl := range m.Payloads {
		if sp, ok := pl.(*PayloadSP); ok && sp.PolicyNo == policyNo {
			return sp
		}
	}
	return nil
}

func applySRTPPolicyParams(sp *PayloadSP, ret *SRTPParams) {
	encrAlg := PayloadKEMACEncrAlgNULL

	for _, param := range sp.PolicyParams {
		if len(param.Value) == 0 {
			continue
		}
		v := param.Value[0]

		switch param.Type {
		case PayloadSPPolicyParamTypeEncrAlg:
			encrAlg = PayloadKEMACEncrAlg(v)
			switch encrAlg {
			case PayloadKEMACEncrAlgNULL:
				ret.Cipher = SRTPCipherNULL
			case PayloadKEMACEncrAlgAESCM128, PayloadKEMACEncrAlgAESKW128:
				ret.Cipher = SRTPCipherAES128ICM
			case PayloadKEMACEncrAlgAESGCM128:
				ret.Cipher = SRTPCipherAES128GCM
			}

		case PayloadSPPolicyParamTypeSessionEncrKeyLen:
			icm := encrAlg == PayloadKEMACEncrAlgAESCM128 || encrAlg == PayloadKEMACEncrAlgAESKW128
			gcm := encrAlg == PayloadKEMACEncrAlgAESGCM128

			switch {
			case v == aes128KeyLen && icm:
				ret.Cipher = SRTPCipherAES128ICM
			case v == aes128KeyLen && gcm:
				ret.Cipher = SRTPCipherAES128GCM
			case v == aes256KeyLen && icm:
				ret.Cipher = SRTPCipherAES256ICM
			case v == aes256KeyLen && gcm:
				ret.Cipher = SRTPCipherAES256GCM
			}

		case PayloadSPPolicyParamTypeAuthAlg:
			switch PayloadKEMACMacAlg(v) {
			case PayloadKEMACMacAlgNULL:
				ret.Auth = SRTPAuthNULL
			case PayloadKEMACMacAlgHMACSHA1160:
				ret.Auth = SRTPAuthHMACSHA180
			}

		case PayloadSPPolicyParamTypeSessionAuthKeyLen:
			switch v {
			case hmac32KeyLen:
				ret.Auth = SRTPAuthHMACSHA132
			case hmac80KeyLen:
				ret.Auth = SRTPAuthHMACSHA180
			}
		}
	}
}

// SRTPParams extracts the SRTP parameters of the first crypto session.
func (m *Message) SRTPParams() (*SRTPParams, error) {
	ret := &SRTPParams{
		Cipher: SRTPCipherAES128ICM,
		Auth:   SRTPAuthHMACSHA180,
	}

	var policyNo uint8
	if len(m.Header.CSIDMapInfo) != 0 {
		policyNo = m.Header.CSIDMapInfo[0].PolicyNo
		ret.ROC = m.Header.CSIDMapInfo[0].ROC
	}

	if sp := m.findSP(policyNo); sp != nil {
		if sp.ProtType != PayloadSPProtTypeSRTP {
			return nil, ErrUnsupportedProtocol
		}
		applySRTPPolicyParams(sp, ret)
	}

	pl := m.FindPayload(PayloadTypeKEMAC, 0)
	if pl == nil {
		return nil, ErrKEMACNotFound
	}
	kemac, err := As[*PayloadKEMAC](pl)
	if err != nil {
		return nil, err
	}

	if kemac.EncrAlg != PayloadKEMACEncrAlgNULL || kemac.MacAlg != PayloadKEMACMacAlgNULL {
		return nil, ErrEncryptedKEMAC
	}

	if len(kemac.SubPayloads) == 0 {
		return nil, ErrKeyDataNotFound
	}

	keyData, err := As[*PayloadKeyData](kemac.SubPayloads[0])
	if err != nil {
		return nil, err
	}

	ret.Key = make([]byte, 0, len(keyData.KeyData)+len(keyData.SaltData))
	ret.Key = append(ret.Key, keyData.KeyData...)
	ret.Key = append(ret.Key, keyData.SaltData...)

	if keyData.KV == PayloadKeyDataKVSPI && len(keyData.SPI) != 0 {
		ret.MKI = cloneBytes(keyData.SPI)
	}

	return ret, nil
}
