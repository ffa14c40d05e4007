// Package capi re-exposes the device registry behind a stable numeric
// status contract, for foreign bindings and the multi-backend dispatch
// shim. Every entry point catches all internal failures, panics included,
// and maps them to a Code; no Go error type crosses this surface.
package capi

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda"
	"github.com/emberml/gocuda/cudart"
)

// BackendID identifies this backend in the multi-backend dispatch ABI.
const BackendID = 2

var errInvalidDevice = errors.New("invalid device")

// translate maps an internal failure to its stable code. Wrapping is
// unwound, so classified errors keep their class through message chains.
func translate(err error) Code {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, errInvalidDevice), errors.Is(err, gocuda.ErrInvalidDeviceID):
		return ErrInvalidArg
	case errors.Is(err, gocuda.ErrNoDevices):
		return ErrNoDevice
	case errors.Is(err, cudart.ErrDeviceUnavailable):
		return ErrDeviceUnavailable
	case errors.Is(err, cudart.ErrNotSupported):
		return ErrNotSupported
	case errors.Is(err, cudart.ErrOSSupport):
		return ErrDriver
	case errors.Is(err, gocuda.ErrNoMemoryManager):
		return ErrNoMemory
	default:
		return ErrRuntime
	}
}

// guard runs fn and maps whatever it signals, error or panic, to a Code.
func guard(fn func() error) (code Code) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("Panic caught at the binding surface: %v", r)
			code = ErrInternal
		}
	}()
	return translate(fn())
}

// GetStream returns the execution queue of the device at a logical index.
func GetStream(mgr *gocuda.Manager, device int) (stream cudart.Stream, code Code) {
	code = guard(func() error {
		var err error
		stream, err = mgr.Stream(device)
		return err
	})
	return stream, code
}

// GetNativeID returns the platform's own id for the device at a logical
// index.
func GetNativeID(mgr *gocuda.Manager, device int) (nativeID int, code Code) {
	code = guard(func() error {
		nativeID = mgr.NativeID(device)
		if nativeID < 0 {
			return errors.Wrapf(errInvalidDevice, "device %d", device)
		}
		return nil
	})
	return nativeID, code
}

// SetNativeID activates the device carrying the platform's own id.
func SetNativeID(mgr *gocuda.Manager, nativeID int) Code {
	return guard(func() error {
		device := mgr.DeviceIDFromNativeID(nativeID)
		if device >= mgr.DeviceCount() {
			return errors.Wrapf(errInvalidDevice, "no device with native id %d", nativeID)
		}
		_, err := mgr.SetActiveDevice(device)
		return err
	})
}

// Sync drains the execution queue of the device at a logical index.
func Sync(mgr *gocuda.Manager, device int) Code {
	return guard(func() error {
		return mgr.Sync(device)
	})
}
