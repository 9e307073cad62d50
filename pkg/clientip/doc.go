// Package clientip extracts the client IP address from HTTP requests.
//
// Proxy headers are checked in this order, and the first one holding a valid,
// specified address wins:
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Addresses are normalized with net.IP.String. When nothing parses, GetIP
// returns the raw RemoteAddr, so the result is never empty for a server request.
//
// The headers are client-controlled unless a trusted proxy overwrites them;
// use the result for logging and session metadata, not for authorization.
package clientip
