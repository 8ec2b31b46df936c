package gamestate

// Path prefixes
const (
	CurrencyPathPrefix = "currency."
)

// Update sources
const (
	SourceWallet = "wallet"
	SourceGrant  = "wallet.grant"
)

// Error messages
const (
	ErrMsgDecodeFailed   = "failed to decode stored value"
	ErrMsgNotInteger     = "stored value is not an integer"
	ErrMsgNegativeAmount = "amount must not be negative"
	ErrMsgReadBalance    = "failed to read balance"
	ErrMsgWriteBalance   = "failed to write balances"
	ErrMsgEmptyPatch     = "update patch is empty"
)
