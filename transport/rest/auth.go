package rest

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
)

// SignatureHeader carries the hex Ed25519 signature of the raw request body.
const SignatureHeader = "X-Signature"

// verifySignature checks that body was signed by the key whose public half is
// the player's identity.
func verifySignature(req *http.Request, player entity.Identity, body []byte) error {
	header := req.Header.Get(SignatureHeader)
	if header == "" {
		return fmt.Errorf("%w: missing %s header", apperror.ErrInvalidSignature, SignatureHeader)
	}

	signature, err := hex.DecodeString(header)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: malformed signature", apperror.ErrInvalidSignature)
	}

	if !ed25519.Verify(ed25519.PublicKey(player[:]), body, signature) {
		return apperror.ErrInvalidSignature
	}

	return nil
}
