package mikey

// PayloadSPProtType is a security protocol.
type PayloadSPProtType uint8

// RFC3830, Table 6.10.a
const (
	PayloadSPProtTypeSRTP PayloadSPProtType = 0
)

// PayloadSPPolicyParamType is a policy param type.
type PayloadSPPolicyParamType uint8

// RFC3830, Table 6.10.1.a, RFC7714, section 14.2
const (
	PayloadSPPolicyParamTypeEncrAlg           PayloadSPPolicyParamType = 0
	PayloadSPPolicyParamTypeSessionEncrKeyLen PayloadSPPolicyParamType = 1
	PayloadSPPolicyParamTypeAuthAlg           PayloadSPPolicyParamType = 2
	PayloadSPPolicyParamTypeSessionAuthKeyLen PayloadSPPolicyParamType = 3
	PayloadSPPolicyParamTypeSessionSaltKeyLen PayloadSPPolicyParamType = 4
	PayloadSPPolicyParamTypeSRTPPseudoRandFun PayloadSPPolicyParamType = 5
	PayloadSPPolicyParamTypeKeyDerRate        PayloadSPPolicyParamType = 6
	PayloadSPPolicyParamTypeSRTPEncrOffOn     PayloadSPPolicyParamType = 7
	PayloadSPPolicyParamTypeSRTCPEncrOffOn    PayloadSPPolicyParamType = 8
	PayloadSPPolicyParamTypeSenderFECOrder    PayloadSPPolicyParamType = 9
	PayloadSPPolicyParamTypeSRTPAuthOffOn     PayloadSPPolicyParamType = 10
	PayloadSPPolicyParamTypeAuthTagLen        PayloadSPPolicyParamType = 11
	PayloadSPPolicyParamTypeSRTPPrefixLen     PayloadSPPolicyParamType = 12
	PayloadSPPolicyParamTypeAEADAuthTagLen    PayloadSPPolicyParamType = 20
)

// PayloadSPPolicyParam is a policy param.
// The length of the param on the wire is always len(Value).
type PayloadSPPolicyParam struct {
	Type  PayloadSPPolicyParamType
	Value []byte
}

// PayloadSP is a security policy payload.
type PayloadSP struct {
	PolicyNo     uint8
	ProtType     PayloadSPProtType
	PolicyParams []PayloadSPPolicyParam
}

// Set sets the policy number and the security protocol.
func (p *PayloadSP) Set(policyNo uint8, protType PayloadSPProtType) {
	p.PolicyNo = policyNo
	p.ProtType = protType
}

// NumParams returns the number of policy params.
func (p *PayloadSP) NumParams() int {
	return len(p.PolicyParams)
}

// Param returns the policy param at the given index.
func (p *PayloadSP) Param(idx int) (*PayloadSPPolicyParam, error) {
	if err := checkIndex(idx, len(p.PolicyParams)); err != nil {
		return nil, err
	}
	return &p.PolicyParams[idx], nil
}

// AddParam appends a policy param with a copy of value.
func (p *PayloadSP) AddParam(typ PayloadSPPolicyParamType, value []byte) error {
	if len(value) > 0xFF {
		return ErrValueTooLong{Field: "policy param", Len: len(value), Max: 0xFF}
	}

	p.PolicyParams = append(p.PolicyParams, PayloadSPPolicyParam{
		Type:  typ,
		Value: cloneBytes(value),
	})
	return nil
}

// RemoveParam removes the policy param at the given index.
func (p *PayloadSP) RemoveParam(idx int) error {
	if err := checkIndex(idx, len(p.PolicyParams)); err != nil {
		return err
	}
	p.PolicyParams = append(p.PolicyParams[:idx], p.PolicyParams[idx+1:]...)
	if len(p.PolicyParams) == 0 {
		p.PolicyParams = nil
	}
	return nil
}

// Type implements Payload.
func (*PayloadSP) Type() PayloadType {
	return PayloadTypeSP
}

func (p *PayloadSP) unmarshal(buf []byte, _ parseState) (int, error) {
	err := checkSize(buf, 5)
	if err != nil {
		return 0, err
	}

	n := 1
	p.PolicyNo = buf[n]
	n++
	p.ProtType = PayloadSPProtType(buf[n])
	n++

	policyParamLength := int(uint16(buf[n])<<8 | uint16(buf[n+1]))
	n += 2

	err = checkSize(buf, n+policyParamLength)
	if err != nil {
		return 0, err
	}

	end := n + policyParamLength
	p.PolicyParams = nil

	for n != end {
		if (end - n) < 2 {
			return 0, ErrInvalidData{Field: "policy param length", Value: policyParamLength}
		}

		typ := PayloadSPPolicyParamType(buf[n])
		n++
		valueLen := int(buf[n])
		n++

		if (end - n) < valueLen {
			return 0, ErrInvalidData{Field: "policy param length", Value: policyParamLength}
		}

		p.PolicyParams = append(p.PolicyParams, PayloadSPPolicyParam{
			Type:  typ,
			Value: cloneBytes(buf[n : n+valueLen]),
		})
		n += valueLen
	}

	return n, nil
}

func (p *PayloadSP) policyParamLength() int {
	n := 0
	for _, pp := range p.PolicyParams {
		n += 2 + len(pp.Value)
	}
	return n
}

func (p *PayloadSP) marshalSize() int {
	return 5 + p.policyParamLength()
}

func (p *PayloadSP) marshalTo(buf []byte, next PayloadType) (int, error) {
	for _, pp := range p.PolicyParams {
		if len(pp.Value) > 0xFF {
			return 0, ErrValueTooLong{Field: "policy param", Len: len(pp.Value), Max: 0xFF}
		}
	}

	policyParamLength := p.policyParamLength()
	if policyParamLength > 0xFFFF {
		return 0, ErrValueTooLong{Field: "policy params", Len: policyParamLength, Max: 0xFFFF}
	}

	buf[0] = byte(next)
	buf[1] = p.PolicyNo
	buf[2] = byte(p.ProtType)
	buf[3] = byte(policyParamLength >> 8)
	buf[4] = byte(policyParamLength)
	n := 5

	for _, pp := range p.PolicyParams {
		buf[n] = byte(pp.Type)
		buf[n+1] = uint8(len(pp.Value))
		n += 2
		n += copy(buf[n:], pp.Value)
	}

	return n, nil
}

func (p *PayloadSP) clone() Payload {
	c := &PayloadSP{
		PolicyNo: p.PolicyNo,
		ProtType: p.ProtType,
	}
	if p.PolicyParams != nil {
		c.PolicyParams = make([]PayloadSPPolicyParam, len(p.PolicyParams))
		for i, pp := range p.PolicyParams {
			c.PolicyParams[i] = PayloadSPPolicyParam{
				Type:  pp.Type,
				Value: cloneBytes(pp.Value),
			}
		}
	}
	return c
}
