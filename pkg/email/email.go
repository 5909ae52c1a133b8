package email

import "strings"

// LocalPart returns the portion of an address before the '@', lowercased.
// Used as the default username for federated sign-ins.
func LocalPart(address string) string {
	local := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		local = address[:at]
	}
	return strings.ToLower(local)
}

// IsValid performs the minimal structural check this service needs: a non-empty
// local part and a non-empty domain. Full RFC validation is the identity
// provider's job; addresses arriving here were already verified upstream.
func IsValid(address string) bool {
	at := strings.IndexByte(address, '@')
	return at > 0 && at < len(address)-1 && !strings.ContainsRune(address[at+1:], '@')
}
