package mikey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewPayload(t *testing.T) {
	for _, ca := range []struct {
		typ PayloadType
		pl  Payload
	}{
		{PayloadTypeKEMAC, &PayloadKEMAC{}},
		{PayloadTypePKE, &PayloadPKE{}},
		{PayloadTypeT, &PayloadT{}},
		{PayloadTypeSP, &PayloadSP{}},
		{PayloadTypeRAND, &PayloadRAND{}},
		{PayloadTypeKeyData, &PayloadKeyData{}},
	} {
		t.Run(ca.typ.String(), func(t *testing.T) {
			pl, err := NewPayload(ca.typ)
			require.NoError(t, err)
			require.Equal(t, ca.pl, pl)
			require.Equal(t, ca.typ, pl.Type())
		})
	}

	for _, typ := range []PayloadType{
		PayloadTypeLast,
		PayloadTypeDH,
		PayloadTypeSIGN,
		PayloadTypeID,
		PayloadTypeCERT,
		PayloadTypeCHASH,
		PayloadTypeV,
		PayloadTypeERR,
		PayloadTypeGenExt,
		13,
	} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := NewPayload(typ)
			require.Equal(t, ErrUnsupportedPayloadType{Type: typ}, err)
		})
	}
}

func TestPayloadTypeString(t *testing.T) {
	require.Equal(t, "KEMAC", PayloadTypeKEMAC.String())
	require.Equal(t, "KeyData", PayloadTypeKeyData.String())
	require.Equal(t, "unknown(99)", PayloadType(99).String())
}

func TestAs(t *testing.T) {
	rand := &PayloadRAND{Data: []byte{1, 2, 3}}

	kemac, err := As[*PayloadKEMAC](rand)
	require.Equal(t, ErrPayloadTypeMismatch{Expected: PayloadTypeKEMAC, Actual: PayloadTypeRAND}, err)
	require.Nil(t, kemac)
	require.Equal(t, &PayloadRAND{Data: []byte{1, 2, 3}}, rand)

	_, err = As[*PayloadOpaque](rand)
	require.Equal(t, ErrPayloadTypeMismatch{Expected: PayloadTypeLast, Actual: PayloadTypeRAND}, err)

	_, err = As[*PayloadKeyData](nil)
	require.Equal(t, ErrPayloadTypeMismatch{Expected: PayloadTypeKeyData, Actual: PayloadTypeLast}, err)

	rand2, err := As[*PayloadRAND](rand)
	require.NoError(t, err)
	require.Same(t, rand, rand2)
}

func TestPayloadKEMACSubPayloads(t *testing.T) {
	var p PayloadKEMAC
	p.Set(PayloadKEMACEncrAlgAESCM128, PayloadKEMACMacAlgHMACSHA1160)
	require.Equal(t, PayloadKEMACEncrAlgAESCM128, p.EncrAlg)
	require.Equal(t, PayloadKEMACMacAlgHMACSHA1160, p.MacAlg)

	err := p.AddSubPayload(nil)
	require.ErrorIs(t, err, ErrNilPayload)

	err = p.AddSubPayload(&PayloadKeyData{KeyType: PayloadKeyDataTypeTGK, KeyData: []byte{1}})
	require.NoError(t, err)

	err = p.AddSubPayload(&PayloadKeyData{KeyType: PayloadKeyDataTypeTEK, KeyData: []byte{2}})
	require.NoError(t, err)

	require.Equal(t, 2, p.NumSubPayloads())

	sub, err := p.SubPayload(1)
	require.NoError(t, err)
	require.Equal(t, &PayloadKeyData{KeyType: PayloadKeyDataTypeTEK, KeyData: []byte{2}}, sub)

	_, err = p.SubPayload(2)
	require.Equal(t, ErrIndexOutOfRange{Index: 2, Len: 2}, err)

	_, err = p.SubPayload(-1)
	require.Equal(t, ErrIndexOutOfRange{Index: -1, Len: 2}, err)

	err = p.RemoveSubPayload(0)
	require.NoError(t, err)

	err = p.RemoveSubPayload(1)
	require.Equal(t, ErrIndexOutOfRange{Index: 1, Len: 1}, err)

	err = p.RemoveSubPayload(0)
	require.NoError(t, err)
	require.Equal(t, 0, p.NumSubPayloads())
	require.Nil(t, p.SubPayloads)
}

func TestPayloadPKESet(t *testing.T) {
	var p PayloadPKE

	data := []byte{1, 2, 3}
	err := p.Set(PayloadPKECacheTypeForCSB, data)
	require.NoError(t, err)
	data[0] = 0xff
	require.Equal(t, PayloadPKE{C: PayloadPKECacheTypeForCSB, Data: []byte{1, 2, 3}}, p)

	err = p.Set(4, nil)
	require.Equal(t, ErrInvalidData{Field: "cache type", Value: 4}, err)

	err = p.Set(0, make([]byte, 0x4000))
	require.Equal(t, ErrValueTooLong{Field: "envelope key", Len: 0x4000, Max: 0x3FFF}, err)

	require.Equal(t, PayloadPKE{C: PayloadPKECacheTypeForCSB, Data: []byte{1, 2, 3}}, p)
}

func TestPayloadTSet(t *testing.T) {
	var p PayloadT

	err := p.Set(PayloadTTSTypeCounter, 0xffffffff)
	require.NoError(t, err)

	_, err = p.Time()
	require.Error(t, err)

	err = p.Set(PayloadTTSTypeCounter, 0x100000000)
	require.Equal(t, ErrValueTooLong{Field: "counter", Len: 8, Max: 4}, err)

	err = p.Set(7, 0)
	require.Equal(t, ErrInvalidData{Field: "timestamp type", Value: 7}, err)

	require.Equal(t, PayloadT{TSType: PayloadTTSTypeCounter, TSValue: 0xffffffff}, p)

	err = p.Set(PayloadTTSTypeNTPUTC, 15354565283574448128)
	require.NoError(t, err)

	tm, err := p.Time()
	require.NoError(t, err)
	require.True(t, time.Date(2013, 4, 15, 11, 15, 18, 0, time.UTC).Equal(tm))
}

func TestPayloadRANDSet(t *testing.T) {
	var p PayloadRAND

	data := []byte{1, 2}
	err := p.Set(data)
	require.NoError(t, err)
	data[0] = 0xff
	require.Equal(t, []byte{1, 2}, p.Data)

	err = p.Set(nil)
	require.Equal(t, ErrInvalidData{Field: "RAND length", Value: 0}, err)

	err = p.Set(make([]byte, 256))
	require.Equal(t, ErrValueTooLong{Field: "random data", Len: 256, Max: 255}, err)

	require.Equal(t, []byte{1, 2}, p.Data)
}

func TestPayloadSPParams(t *testing.T) {
	var p PayloadSP
	p.Set(3, PayloadSPProtTypeSRTP)

	err := p.AddParam(PayloadSPPolicyParamTypeEncrAlg, []byte{1})
	require.NoError(t, err)

	err = p.AddParam(PayloadSPPolicyParamTypeSessionEncrKeyLen, []byte{16})
	require.NoError(t, err)

	err = p.AddParam(PayloadSPPolicyParamTypeAuthAlg, make([]byte, 256))
	require.Equal(t, ErrValueTooLong{Field: "policy param", Len: 256, Max: 255}, err)

	require.Equal(t, 2, p.NumParams())

	param, err := p.Param(1)
	require.NoError(t, err)
	require.Equal(t, &PayloadSPPolicyParam{Type: PayloadSPPolicyParamTypeSessionEncrKeyLen, Value: []byte{16}}, param)

	_, err = p.Param(2)
	require.Equal(t, ErrIndexOutOfRange{Index: 2, Len: 2}, err)

	err = p.RemoveParam(0)
	require.NoError(t, err)

	err = p.RemoveParam(1)
	require.Equal(t, ErrIndexOutOfRange{Index: 1, Len: 1}, err)

	require.Equal(t, PayloadSP{
		PolicyNo: 3,
		PolicyParams: []PayloadSPPolicyParam{
			{Type: PayloadSPPolicyParamTypeSessionEncrKeyLen, Value: []byte{16}},
		},
	}, p)
}

func TestPayloadSPParamLengthFromValue(t *testing.T) {
	p := &PayloadSP{
		PolicyNo: 1,
		PolicyParams: []PayloadSPPolicyParam{
			{Type: PayloadSPPolicyParamTypeEncrAlg, Value: []byte{1}},
			{Type: PayloadSPPolicyParamTypeSessionEncrKeyLen, Value: []byte{0xaa, 0xbb, 0xcc}},
		},
	}

	// values are replaced after the params have been added
	p.PolicyParams[0].Value = []byte{1, 2}
	p.PolicyParams[1].Value = nil

	buf := make([]byte, p.marshalSize())
	n, err := p.marshalTo(buf, PayloadTypeLast)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, []byte{
		0x00, 0x01, 0x00, 0x00, 0x06,
		0x00, 0x02, 0x01, 0x02,
		0x01, 0x00,
	}, buf)
}

func TestPayloadKeyDataSet(t *testing.T) {
	var p PayloadKeyData

	err := p.SetKey(1, []byte{1})
	require.Equal(t, ErrInvalidData{Field: "key type", Value: 1}, err)

	err = p.SetKey(PayloadKeyDataTypeTEK, nil)
	require.Equal(t, ErrInvalidData{Field: "key data length", Value: 0}, err)

	err = p.SetKey(PayloadKeyDataTypeTEK, make([]byte, 0x10000))
	require.Equal(t, ErrValueTooLong{Field: "key data", Len: 0x10000, Max: 0xFFFF}, err)

	require.Equal(t, PayloadKeyData{}, p)

	key := []byte{1, 2, 3}
	err = p.SetKey(PayloadKeyDataTypeTEK, key)
	require.NoError(t, err)
	key[0] = 0xff

	err = p.SetSalt([]byte{4, 5})
	require.NoError(t, err)

	err = p.SetSPI([]byte{6})
	require.NoError(t, err)

	require.Equal(t, PayloadKeyData{
		KeyType:  PayloadKeyDataTypeTEK,
		KeyData:  []byte{1, 2, 3},
		SaltData: []byte{4, 5},
		KV:       PayloadKeyDataKVSPI,
		SPI:      []byte{6},
	}, p)

	err = p.SetInterval([]byte{7}, []byte{8})
	require.NoError(t, err)

	require.Equal(t, PayloadKeyData{
		KeyType:   PayloadKeyDataTypeTEK,
		KeyData:   []byte{1, 2, 3},
		SaltData:  []byte{4, 5},
		KV:        PayloadKeyDataKVInterval,
		ValidFrom: []byte{7},
		ValidTo:   []byte{8},
	}, p)

	err = p.SetSPI(make([]byte, 256))
	require.Error(t, err)

	err = p.SetInterval(make([]byte, 256), nil)
	require.Error(t, err)

	err = p.SetSalt(nil)
	require.NoError(t, err)
	require.Nil(t, p.SaltData)

	err = p.SetSPI([]byte{9})
	require.NoError(t, err)
	require.Nil(t, p.ValidFrom)
	require.Nil(t, p.ValidTo)
}

func TestPayloadClone(t *testing.T) {
	for _, pl := range []Payload{
		&PayloadPKE{C: 1, Data: []byte{1}},
		&PayloadT{TSType: PayloadTTSTypeNTP, TSValue: 5},
		&PayloadRAND{Data: []byte{1, 2}},
		&PayloadSP{PolicyNo: 1, PolicyParams: []PayloadSPPolicyParam{{Type: 1, Value: []byte{2}}}},
		&PayloadKeyData{KeyType: PayloadKeyDataTypeTEK, KeyData: []byte{1}, KV: PayloadKeyDataKVSPI, SPI: []byte{2}},
		&PayloadOpaque{Kind: PayloadTypeERR, Data: []byte{1, 0, 0}},
		&PayloadKEMAC{SubPayloads: []Payload{&PayloadKeyData{KeyType: PayloadKeyDataTypeTGK, KeyData: []byte{3}}}},
	} {
		t.Run(pl.Type().String(), func(t *testing.T) {
			c := pl.clone()
			require.Equal(t, pl, c)
			require.NotSame(t, pl, c)
		})
	}
}
