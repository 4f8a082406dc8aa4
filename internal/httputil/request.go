package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/fxamacker/cbor/v2"
)

// ContentTypeCBOR selects the CBOR request decoder.
const ContentTypeCBOR = "application/cbor"

// MaxBodyBytes caps action request bodies.
const MaxBodyBytes = 64 << 10

// cborDecMode reads wallets and action names as CBOR text strings through
// their UnmarshalText methods, the same representation JSON uses.
var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("httputil: CBOR decoder initialization failed: " + err.Error())
	}
}

// DecodeBody decodes the request body into v as CBOR when the request says
// so, and as JSON otherwise. An empty body leaves v untouched.
func DecodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return fmt.Errorf("body exceeds %d bytes", MaxBodyBytes)
	}
	if len(body) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == ContentTypeCBOR {
		if err := cborDecMode.Unmarshal(body, v); err != nil {
			return fmt.Errorf("decode cbor: %w", err)
		}
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
