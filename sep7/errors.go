package sep7

import "fmt"

// InvalidAddressError is returned when a Stellar address fails the structural
// check (56 characters, leading 'G').
type InvalidAddressError struct {
	Address string
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid stellar address: %s", e.Address)
}

// InvalidAmountError is returned when an amount is not a positive finite number.
type InvalidAmountError struct {
	Amount string
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %s, must be a positive number", e.Amount)
}

// InvalidAssetError is returned when an asset configuration is inconsistent,
// such as a non-XLM code without an issuer.
type InvalidAssetError struct {
	Reason string
}

func (e InvalidAssetError) Error() string {
	return e.Reason
}

// InvalidURIError is returned when a URI is malformed or violates a
// construction constraint.
type InvalidURIError struct {
	Reason string
}

func (e InvalidURIError) Error() string {
	return e.Reason
}

// InvalidOperationError is returned when a URI carries an operation other
// than pay or tx.
type InvalidOperationError struct {
	Operation string
}

func (e InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %s", e.Operation)
}

// MissingParameterError is returned when a required URI parameter is absent.
type MissingParameterError struct {
	Param string
}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}
