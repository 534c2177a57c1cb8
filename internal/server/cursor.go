package server

import (
	"encoding/base64"
	"encoding/json"
)

// cursorEnvelope wraps the engine's raw cursor token for transport. The
// engine only ever sees the token (the DocID of the last returned hit).
type cursorEnvelope struct {
	Token string `json:"token"`
}

// encodeCursor wraps token as base64(JSON {token}).
func encodeCursor(token string) string {
	data, _ := json.Marshal(cursorEnvelope{Token: token})
	return base64.StdEncoding.EncodeToString(data)
}

// decodeCursor unwraps the envelope. Any malformed input yields an empty
// token: invalid cursors reset pagination, they never surface as errors.
func decodeCursor(cursor string) string {
	data, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return ""
	}
	var env cursorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Token
}
