// Package auth provides room access tokens for the yogi signaling endpoint.
//
// # Tokens
//
// Clients joining the voice room authenticate with JWT tokens signed HS256
// using the configured room.api_secret. A token carries the participant
// identity ("sub"), the issuing API key ("iss"), and the room it admits to
// ("room"), plus standard iat/exp claims.
//
// Mint a token:
//
//	key := auth.NewRoomKey(cfg.Room.APIKey, []byte(cfg.Room.APISecret))
//	tok, err := key.Mint(auth.Grant{Identity: "phone", Room: "yogi", TTL: time.Hour})
//
// # Middleware
//
// Middleware() wraps signaling handlers, rejects missing/expired/foreign-room
// tokens, and attaches the verified Claims to the request context where
// handlers retrieve them with FromContext().
package auth
