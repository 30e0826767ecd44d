// Package reputation implements the malware and reputation provider
// client against the analysis API's v3 REST surface.
//
// All objects (files, URLs, domains, IP addresses) share one envelope:
// a data object with an ID, a type, and an attributes map that carries
// the per-engine verdict counters. URL objects are addressed by the
// unpadded URL-safe base64 encoding of the raw URL; URL submissions go
// through a form-encoded POST and complete asynchronously, polled via
// the analyses endpoint.
package reputation
