package gateway

import "errors"

var ErrNoPayments = errors.New("no pending payments")
