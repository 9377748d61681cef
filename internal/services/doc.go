// Package services defines the ProjectSource interface for remote project hosts.
//
// The only shipping implementation is [HTTPProjectSource], which talks to the
// project API over HTTP. The API usually sits behind a tunneling proxy
// (localtunnel, ngrok) that answers with an interstitial HTML page unless a
// fixed bypass header is present, so every request carries that header and
// responses are rejected when the content type is not what the call expects.
package services
