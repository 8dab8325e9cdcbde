package devices

import "errors"

var (
	ErrNotFound     = errors.New("device not found")
	ErrForbidden    = errors.New("not allowed to modify this device")
	ErrIMEITaken    = errors.New("a device with this IMEI already exists")
	ErrInvalidPrice = errors.New("price must be a non-negative decimal")
	ErrFrozenField  = errors.New("IMEI and price are frozen once the device is authorized")
)
