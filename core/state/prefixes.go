package state

// Raw key prefixes for the state manager. Keys built from these are hashed
// with keccak256 before they reach the database, so the layout here only needs
// to be unambiguous, not compact.
var (
	saleCollectionPrefix     = []byte("sale/collection/")
	saleWhitelistPrefix      = []byte("sale/wl/")
	saleTokenWhitelistPrefix = []byte("sale/twl/")
	saleBalancePrefix        = []byte("sale/bal/")

	tokenClassPrefix  = []byte("token/class/")
	tokenItemPrefix   = []byte("token/item/")
	tokenBurnedPrefix = []byte("token/burned/")
	tokenOwnerPrefix  = []byte("token/owner/")
)

func appendAddr(buf []byte, addr [20]byte) []byte {
	return append(buf, addr[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, '/')
}
