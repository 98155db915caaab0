// Package srtpcontext contains a SRTP context whose keys are exchanged through MIKEY.
package srtpcontext

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/randutil"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/srtp/v3"

	"github.com/bluenviron/gomikey/pkg/mikey"
)

// NewSSRC returns a random SSRC.
func NewSSRC() (uint32, error) {
	v, err := randutil.CryptoUint64()
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Context is a srtp.Context with
// - accessible key
// - accessible SSRCs
// - mutex around Encrypt*, ROC*
type Context struct {
	// SRTP cipher name. It defaults to aes-128-icm.
	Cipher string

	// SRTP authentication name. It defaults to hmac-sha1-80.
	Auth string

	// master key followed by master salt.
	// When nil, a random one is generated.
	Key []byte

	// master key identifier (optional).
	MKI []byte

	// protected SSRCs.
	SSRCs []uint32

	// initial rollover counters, one for each SSRC (optional).
	StartROCs []uint32

	// logger factory.
	// It defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	profile Profile
	log     logging.LeveledLogger
	w       *srtp.Context
	mutex   sync.RWMutex
}

// FromMIKEY allocates a Context with the parameters contained in a MIKEY message.
func FromMIKEY(msg *mikey.Message, loggerFactory logging.LoggerFactory) (*Context, error) {
	params, err := msg.SRTPParams()
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Cipher:        params.Cipher,
		Auth:          params.Auth,
		Key:           params.Key,
		MKI:           params.MKI,
		LoggerFactory: loggerFactory,
	}

	for i := 0; i < msg.NumCS(); i++ {
		var entry *mikey.SRTPIDEntry
		entry, err = msg.CS(i)
		if err != nil {
			return nil, err
		}
		ctx.SSRCs = append(ctx.SSRCs, entry.SSRC)
		ctx.StartROCs = append(ctx.StartROCs, entry.ROC)
	}

	err = ctx.Initialize()
	if err != nil {
		return nil, err
	}

	return ctx, nil
}

// Initialize initializes a Context.
func (ctx *Context) Initialize() error {
	if ctx.LoggerFactory == nil {
		ctx.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	ctx.log = ctx.LoggerFactory.NewLogger("srtpcontext")

	if ctx.StartROCs != nil && len(ctx.StartROCs) != len(ctx.SSRCs) {
		return fmt.Errorf("SSRCs and ROCs have different lengths")
	}

	var err error
	ctx.profile, err = ProfileFor(ctx.Cipher, ctx.Auth)
	if err != nil {
		return err
	}
	ctx.Cipher, ctx.Auth = ctx.profile.Names()

	keyLen := ctx.profile.KeyLen + ctx.profile.SaltLen

	if ctx.Key == nil {
		ctx.Key = make([]byte, keyLen)
		_, err = rand.Read(ctx.Key)
		if err != nil {
			return err
		}
	} else if len(ctx.Key) != keyLen {
		return fmt.Errorf("invalid key length: expected %d, got %d", keyLen, len(ctx.Key))
	}

	var opts []srtp.ContextOption
	if ctx.MKI != nil {
		opts = append(opts, srtp.MasterKeyIndicator(ctx.MKI))
	}

	ctx.w, err = srtp.CreateContext(
		ctx.Key[:ctx.profile.KeyLen],
		ctx.Key[ctx.profile.KeyLen:],
		ctx.profile.ProtectionProfile,
		opts...)
	if err != nil {
		return err
	}

	for i, ssrc := range ctx.SSRCs {
		if ctx.StartROCs != nil {
			ctx.w.SetROC(ssrc, ctx.StartROCs[i])
		}
	}

	ctx.log.Debugf("SRTP context created (cipher %s, authentication %s, %d SSRCs)",
		ctx.Cipher, ctx.Auth, len(ctx.SSRCs))

	return nil
}

// Profile returns the protection profile in use.
func (ctx *Context) Profile() Profile {
	return ctx.profile
}

// DecryptRTP decrypts a RTP packet.
func (ctx *Context) DecryptRTP(dst []byte, encrypted []byte, header *rtp.Header) ([]byte, error) {
	return ctx.w.DecryptRTP(dst, encrypted, header)
}

// DecryptRTCP decrypts a RTCP packet.
func (ctx *Context) DecryptRTCP(dst []byte, encrypted []byte, header *rtcp.Header) ([]byte, error) {
	return ctx.w.DecryptRTCP(dst, encrypted, header)
}

// EncryptRTP encrypts a RTP packet.
func (ctx *Context) EncryptRTP(dst []byte, plaintext []byte, header *rtp.Header) ([]byte, error) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	return ctx.w.EncryptRTP(dst, plaintext, header)
}

// EncryptRTCP encrypts a RTCP packet.
func (ctx *Context) EncryptRTCP(dst []byte, decrypted []byte, header *rtcp.Header) ([]byte, error) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	return ctx.w.EncryptRTCP(dst, decrypted, header)
}

// ROC returns the current rollover counter of a SSRC.
func (ctx *Context) ROC(ssrc uint32) uint32 {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	v, _ := ctx.w.ROC(ssrc)
	return v
}

// MIKEY generates a MIKEY message that allows a receiver to decrypt
// the packets produced by the context.
func (ctx *Context) MIKEY() (*mikey.Message, error) {
	msg, err := mikey.NewMessageFromSRTPParams(mikey.SRTPParams{
		Cipher: ctx.Cipher,
		Auth:   ctx.Auth,
		Key:    ctx.Key,
		MKI:    ctx.MKI,
	})
	if err != nil {
		return nil, err
	}

	for _, ssrc := range ctx.SSRCs {
		err = msg.AddCSSRTP(0, ssrc, ctx.ROC(ssrc))
		if err != nil {
			return nil, err
		}
	}

	ctx.log.Tracef("MIKEY message generated with CSB ID %d", msg.Header.CSBID)

	return msg, nil
}
