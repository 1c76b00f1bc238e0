// Package domain contains entities without behaviour beyond validation.
package domain

import "strings"

// Fingerprint is the opaque machine identity supplied by the client.
type Fingerprint string

const primarySeparator = "_"

// Primary returns the part before the first underscore. Browsers on the
// same machine share it; a fingerprint without an underscore is its own
// primary form.
func (f Fingerprint) Primary() Fingerprint {
	head, _, _ := strings.Cut(string(f), primarySeparator)
	return Fingerprint(head)
}
