package intent

// DustTokenInput is one client-supplied dust balance, per spec.md §4.9's
// dustTokens item shape.
type DustTokenInput struct {
	Address      string  `json:"address" validate:"required,hexaddress"`
	Symbol       string  `json:"symbol" validate:"required"`
	Decimals     int     `json:"decimals" validate:"gte=0,lte=18"`
	RawAmountHex string  `json:"rawAmountHex" validate:"required,rawamounthex"`
	PriceUSD     float64 `json:"priceUSD" validate:"gte=0"`
}

// Params is the dust-zap-specific request body, validated field-by-field
// per spec.md §4.9.
type Params struct {
	ToTokenAddress  string           `json:"toTokenAddress" validate:"required,hexaddress"`
	ToTokenDecimals int              `json:"toTokenDecimals" validate:"gte=1,lte=18"`
	Slippage        *float64         `json:"slippage,omitempty" validate:"omitempty,gte=0,lte=100"`
	ReferralAddress string           `json:"referralAddress,omitempty" validate:"omitempty,hexaddress"`
	TargetToken     string           `json:"targetToken,omitempty" validate:"omitempty"`
	DustTokens      []DustTokenInput `json:"dustTokens,omitempty" validate:"omitempty,dive"`
}

// Request is the common envelope C10 validates before dispatching to a
// handler by intent type.
type Request struct {
	UserAddress string `json:"userAddress" validate:"required,hexaddress"`
	ChainID     int64  `json:"chainId" validate:"required,gt=0"`
	Params      Params `json:"params" validate:"required"`
}

// Result is C9's successful response shape.
type Result struct {
	IntentID          string `json:"intentId"`
	StreamURL         string `json:"streamUrl"`
	Mode              string `json:"mode"`
	EstimatedDuration string `json:"estimatedDuration"`
	TotalTokens       int    `json:"totalTokens"`
}
