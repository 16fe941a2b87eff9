package daemon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"

	"scrollreel/internal/api"
)

// nonceSigner issues anti-forgery tokens bound to an action and an
// animation. Tokens are HMAC-SHA256(secret, action|animationID), hex encoded.
type nonceSigner struct {
	secret []byte
}

func newNonceSigner(secret string) *nonceSigner {
	return &nonceSigner{secret: []byte(secret)}
}

func validAction(action string) bool {
	return slices.Contains(api.Actions(), action)
}

func (n *nonceSigner) sign(action string, animationID int64) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(action + "|" + strconv.FormatInt(animationID, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (n *nonceSigner) verify(action string, animationID int64, nonce string) bool {
	if nonce == "" || !validAction(action) {
		return false
	}
	got, err := hex.DecodeString(nonce)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(n.sign(action, animationID))
	return hmac.Equal(got, want)
}
