package mikey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSRTPKey = []byte{
	0x5f, 0xc5, 0xef, 0x38, 0x2c, 0xc8, 0x32, 0x1d,
	0x09, 0x4c, 0xe5, 0xa2, 0xbd, 0x62, 0xf1, 0x11,
	0xf9, 0x53, 0x51, 0x2a, 0x75, 0x7e, 0x38, 0xf6,
	0x8b, 0xcc, 0x46, 0xec, 0x3f, 0x43,
}

var casesSRTPParams = []struct {
	name string
	in   SRTPParams
	out  SRTPParams
}{
	{
		"aes-128-icm hmac-sha1-80",
		SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha1-80", Key: testSRTPKey},
		SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha1-80", Key: testSRTPKey},
	},
	{
		"aes-256-icm hmac-sha1-32",
		SRTPParams{Cipher: "aes-256-icm", Auth: "hmac-sha1-32", Key: bytes.Repeat([]byte{1}, 46)},
		SRTPParams{Cipher: "aes-256-icm", Auth: "hmac-sha1-32", Key: bytes.Repeat([]byte{1}, 46)},
	},
	{
		"aes-128-gcm",
		SRTPParams{Cipher: "aes-128-gcm", Auth: "hmac-sha1-80", Key: bytes.Repeat([]byte{2}, 28)},
		SRTPParams{Cipher: "aes-128-gcm", Auth: "null", Key: bytes.Repeat([]byte{2}, 28)},
	},
	{
		"aes-256-gcm",
		SRTPParams{Cipher: "aes-256-gcm", Auth: "whatever", Key: bytes.Repeat([]byte{3}, 44)},
		SRTPParams{Cipher: "aes-256-gcm", Auth: "null", Key: bytes.Repeat([]byte{3}, 44)},
	},
	{
		"cipher only",
		SRTPParams{Cipher: "aes-256-icm", Key: testSRTPKey},
		SRTPParams{Cipher: "aes-256-icm", Auth: "hmac-sha1-80", Key: testSRTPKey},
	},
	{
		"auth only",
		SRTPParams{Auth: "hmac-sha1-32", Key: testSRTPKey},
		SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha1-32", Key: testSRTPKey},
	},
	{
		"key and mki",
		SRTPParams{Key: testSRTPKey, MKI: []byte{0, 0, 0, 1}},
		SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha1-80", Key: testSRTPKey, MKI: []byte{0, 0, 0, 1}},
	},
}

func TestSRTPParams(t *testing.T) {
	for _, ca := range casesSRTPParams {
		t.Run(ca.name, func(t *testing.T) {
			msg, err := NewMessageFromSRTPParams(ca.in)
			require.NoError(t, err)

			buf, err := msg.Marshal()
			require.NoError(t, err)

			var dec Message
			err = dec.Unmarshal(buf)
			require.NoError(t, err)
			require.Equal(t, *msg, dec)

			params, err := dec.SRTPParams()
			require.NoError(t, err)
			require.Equal(t, &ca.out, params)
		})
	}
}

func TestNewMessageFromSRTPParams(t *testing.T) {
	msg, err := NewMessageFromSRTPParams(SRTPParams{
		Cipher: "aes-128-icm",
		Auth:   "hmac-sha1-80",
		Key:    testSRTPKey,
	})
	require.NoError(t, err)

	require.Equal(t, uint8(Version), msg.Header.Version)
	require.Equal(t, DataTypeInitiatorPSK, msg.Header.DataType)
	require.Equal(t, PRFFuncMIKEY1, msg.Header.PRFFunc)
	require.Equal(t, CSIDMapTypeSRTPID, msg.Header.CSIDMapType)
	require.Equal(t, 0, msg.NumCS())
	require.Equal(t, 4, msg.NumPayloads())

	ts, err := As[*PayloadT](msg.Payloads[0])
	require.NoError(t, err)
	require.Equal(t, PayloadTTSTypeNTPUTC, ts.TSType)

	rnd, err := As[*PayloadRAND](msg.Payloads[1])
	require.NoError(t, err)
	require.Len(t, rnd.Data, 16)

	// same policy written by other implementations
	require.Equal(t, casesMessage[0].msg.Payloads[2], msg.Payloads[2])
	require.Equal(t, casesMessage[0].msg.Payloads[3], msg.Payloads[3])

	msg, err = NewMessageFromSRTPParams(SRTPParams{Key: testSRTPKey})
	require.NoError(t, err)
	require.Equal(t, 1, msg.NumPayloads())
	require.Equal(t, PayloadTypeKEMAC, msg.Payloads[0].Type())
}

func TestNewMessageFromSRTPParamsErrors(t *testing.T) {
	for _, ca := range []struct {
		name   string
		params SRTPParams
		err    error
	}{
		{
			"missing key",
			SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha1-80"},
			ErrSRTPKeyMissing,
		},
		{
			"unsupported cipher",
			SRTPParams{Cipher: "aes-192-icm", Auth: "hmac-sha1-80", Key: testSRTPKey},
			ErrUnsupportedCipher{Name: "aes-192-icm"},
		},
		{
			"unsupported auth",
			SRTPParams{Cipher: "aes-128-icm", Auth: "hmac-sha256", Key: testSRTPKey},
			ErrUnsupportedAuth{Name: "hmac-sha256"},
		},
		{
			"mki too long",
			SRTPParams{Key: testSRTPKey, MKI: make([]byte, 256)},
			ErrValueTooLong{Field: "SPI", Len: 256, Max: 255},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, err := NewMessageFromSRTPParams(ca.params)
			require.ErrorIs(t, err, ca.err)
		})
	}
}

func TestMessageSRTPParamsStandard(t *testing.T) {
	params, err := casesMessage[0].msg.SRTPParams()
	require.NoError(t, err)
	require.Equal(t, &SRTPParams{
		Cipher: "aes-128-icm",
		Auth:   "hmac-sha1-80",
		Key:    testSRTPKey,
	}, params)
}

func TestMessageSRTPParamsPolicy(t *testing.T) {
	msg := &Message{
		Header: Header{
			Version: 1,
			CSIDMapInfo: []SRTPIDEntry{
				{PolicyNo: 1, SSRC: 0x01020304, ROC: 12},
			},
		},
		Payloads: []Payload{
			&PayloadSP{
				PolicyNo: 0,
				PolicyParams: []PayloadSPPolicyParam{
					{Type: PayloadSPPolicyParamTypeEncrAlg, Value: []byte{byte(PayloadKEMACEncrAlgNULL)}},
				},
			},
			&PayloadSP{
				PolicyNo: 1,
				PolicyParams: []PayloadSPPolicyParam{
					{Type: PayloadSPPolicyParamTypeEncrAlg, Value: []byte{byte(PayloadKEMACEncrAlgAESKW128)}},
					{Type: PayloadSPPolicyParamTypeSessionEncrKeyLen, Value: []byte{32}},
					{Type: PayloadSPPolicyParamTypeAuthAlg, Value: []byte{byte(PayloadKEMACMacAlgNULL)}},
					{Type: PayloadSPPolicyParamTypeSRTPEncrOffOn},
				},
			},
			&PayloadKEMAC{
				SubPayloads: []Payload{
					&PayloadKeyData{
						KeyType:  PayloadKeyDataTypeTEK,
						KeyData:  []byte{1, 2},
						SaltData: []byte{3},
					},
				},
			},
		},
	}

	params, err := msg.SRTPParams()
	require.NoError(t, err)
	require.Equal(t, &SRTPParams{
		Cipher: "aes-256-icm",
		Auth:   "null",
		Key:    []byte{1, 2, 3},
		ROC:    12,
	}, params)
}

func TestMessageSRTPParamsErrors(t *testing.T) {
	keyData := &PayloadKeyData{KeyType: PayloadKeyDataTypeTEK, KeyData: []byte{1}}

	for _, ca := range []struct {
		name string
		msg  Message
		err  error
	}{
		{
			"no kemac",
			Message{},
			ErrKEMACNotFound,
		},
		{
			"encrypted kemac",
			Message{Payloads: []Payload{
				&PayloadKEMAC{EncrAlg: PayloadKEMACEncrAlgAESCM128, SubPayloads: []Payload{keyData}},
			}},
			ErrEncryptedKEMAC,
		},
		{
			"authenticated kemac",
			Message{Payloads: []Payload{
				&PayloadKEMAC{MacAlg: PayloadKEMACMacAlgHMACSHA1160, SubPayloads: []Payload{keyData}},
			}},
			ErrEncryptedKEMAC,
		},
		{
			"empty kemac",
			Message{Payloads: []Payload{&PayloadKEMAC{}}},
			ErrKeyDataNotFound,
		},
		{
			"wrong sub-payload",
			Message{Payloads: []Payload{
				&PayloadKEMAC{SubPayloads: []Payload{&PayloadOpaque{Kind: PayloadTypeID, Data: []byte{0, 0, 0}}}},
			}},
			ErrPayloadTypeMismatch{Expected: PayloadTypeKeyData, Actual: PayloadTypeID},
		},
		{
			"unsupported protocol",
			Message{Payloads: []Payload{
				&PayloadSP{ProtType: 1},
				&PayloadKEMAC{SubPayloads: []Payload{keyData}},
			}},
			ErrUnsupportedProtocol,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, err := ca.msg.SRTPParams()
			require.ErrorIs(t, err, ca.err)
		})
	}
}
