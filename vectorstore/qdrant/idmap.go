package qdrant

import "github.com/google/uuid"

// idNamespace is a fixed namespace UUID used only to derive
// deterministic point ids; it carries no other meaning and must never
// change, or every previously inserted id would remap to a different
// backend id.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// backendID maps a caller-supplied string id to a UUID-shaped backend
// id via a deterministic, total function of the input: a version-5
// (SHA-1) namespaced UUID. Unlike the ad-hoc hash this replaces (§9),
// it has no wall-clock component, so the same input always produces
// the same backend id, across processes and across runs.
func backendID(id string) string {
	return uuid.NewSHA1(idNamespace, []byte(id)).String()
}
