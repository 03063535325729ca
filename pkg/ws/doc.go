// Package ws is the realtime transport: a gorilla/websocket endpoint that
// authenticates the handshake through an IdentityResolver, registers the
// connection with the registry, and speaks the JSON wire protocol
// (connection_established, notification, pong, shutdown outbound;
// ping, subscribe, unsubscribe inbound).
//
// Each connection owns a buffered send channel drained by a single write
// pump, so fan-out from the registry never blocks on a slow client.
package ws
