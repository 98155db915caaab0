package srtpcontext

import (
	"fmt"

	"github.com/pion/srtp/v3"

	"github.com/bluenviron/gomikey/pkg/mikey"
)

const (
	cmSaltLen  = 14
	gcmSaltLen = 12
)

// Profile is a SRTP protection profile, with the length of its master key and salt.
type Profile struct {
	ProtectionProfile srtp.ProtectionProfile
	KeyLen            int
	SaltLen           int
}

type profileKey struct {
	cipher string
	auth   string
}

var profiles = map[profileKey]Profile{
	{mikey.SRTPCipherAES128ICM, mikey.SRTPAuthHMACSHA180}: {srtp.ProtectionProfileAes128CmHmacSha1_80, 16, cmSaltLen},
	{mikey.SRTPCipherAES128ICM, mikey.SRTPAuthHMACSHA132}: {srtp.ProtectionProfileAes128CmHmacSha1_32, 16, cmSaltLen},
	{mikey.SRTPCipherAES256ICM, mikey.SRTPAuthHMACSHA180}: {srtp.ProtectionProfileAes256CmHmacSha1_80, 32, cmSaltLen},
	{mikey.SRTPCipherAES256ICM, mikey.SRTPAuthHMACSHA132}: {srtp.ProtectionProfileAes256CmHmacSha1_32, 32, cmSaltLen},
	{mikey.SRTPCipherAES128GCM, mikey.SRTPAuthNULL}:       {srtp.ProtectionProfileAeadAes128Gcm, 16, gcmSaltLen},
	{mikey.SRTPCipherAES256GCM, mikey.SRTPAuthNULL}:       {srtp.ProtectionProfileAeadAes256Gcm, 32, gcmSaltLen},
}

// ProfileFor returns the protection profile that corresponds to a cipher and an authentication.
// GCM ciphers provide their own authentication, therefore the authentication name is ignored.
// When both names are empty, aes-128-icm with hmac-sha1-80 is used.
func ProfileFor(cipher string, auth string) (Profile, error) {
	if cipher == "" && auth == "" {
		cipher = mikey.SRTPCipherAES128ICM
		auth = mikey.SRTPAuthHMACSHA180
	}

	if cipher == mikey.SRTPCipherAES128GCM || cipher == mikey.SRTPCipherAES256GCM {
		auth = mikey.SRTPAuthNULL
	}

	p, ok := profiles[profileKey{cipher, auth}]
	if !ok {
		return Profile{}, fmt.Errorf("unsupported SRTP profile: cipher '%s', authentication '%s'", cipher, auth)
	}

	return p, nil
}

// Names returns the cipher and authentication names of the profile.
func (p Profile) Names() (string, string) {
	for k, v := range profiles {
		if v == p {
			return k.cipher, k.auth
		}
	}
	return "", ""
}
