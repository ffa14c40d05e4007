package capi

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda"
	"github.com/emberml/gocuda/cudart"
	"github.com/emberml/gocuda/sim"
)

func init() {
	klog.InitFlags(nil)
}

func newTestManager(t *testing.T) *gocuda.Manager {
	manager, err := gocuda.New(sim.New(sim.DefaultCatalog...), nil)
	require.NoError(t, err, "Failed to create manager")
	t.Cleanup(func() { require.NoError(t, manager.Close()) })
	return manager
}

func TestGetStream(t *testing.T) {
	manager := newTestManager(t)

	stream, code := GetStream(manager, 0)
	require.Equal(t, Success, code)
	require.NotNil(t, stream)
	direct, err := manager.Stream(0)
	require.NoError(t, err)
	require.Same(t, direct, stream)

	stream, code = GetStream(manager, 9)
	require.Equal(t, ErrInvalidArg, code)
	require.Nil(t, stream)
}

func TestNativeIDs(t *testing.T) {
	manager := newTestManager(t)

	nativeID, code := GetNativeID(manager, 0)
	require.Equal(t, Success, code)
	require.Equal(t, manager.NativeID(0), nativeID)

	_, code = GetNativeID(manager, 42)
	require.Equal(t, ErrInvalidArg, code)

	require.Equal(t, Success, SetNativeID(manager, 0))
	require.Equal(t, 0, manager.NativeID(manager.ActiveDeviceID()))

	require.Equal(t, ErrInvalidArg, SetNativeID(manager, 99))
}

func TestSync(t *testing.T) {
	manager := newTestManager(t)
	require.Equal(t, Success, Sync(manager, 1))
	require.Equal(t, ErrInvalidArg, Sync(manager, -1))
}

func TestGuardCatchesPanics(t *testing.T) {
	_, code := GetStream(nil, 0)
	require.Equal(t, ErrInternal, code, "A nil manager must surface as an internal code, not a panic")
}

func TestTranslate(t *testing.T) {
	for _, test := range []struct {
		err  error
		want Code
	}{
		{nil, Success},
		{gocuda.ErrNoDevices, ErrNoDevice},
		{errors.Wrap(gocuda.ErrNoDevices, "creating manager"), ErrNoDevice},
		{errors.Wrap(gocuda.ErrInvalidDeviceID, "lookup"), ErrInvalidArg},
		{errors.Wrap(cudart.ErrDeviceUnavailable, "queue"), ErrDeviceUnavailable},
		{errors.Wrap(cudart.ErrNotSupported, "query"), ErrNotSupported},
		{errors.Wrap(cudart.ErrOSSupport, "probe"), ErrDriver},
		{errors.Wrap(gocuda.ErrNoMemoryManager, "alloc"), ErrNoMemory},
		{errors.New("anything else"), ErrRuntime},
	} {
		require.Equalf(t, test.want, translate(test.err), "Translating %v", test.err)
	}
}

func TestCodeStrings(t *testing.T) {
	for _, code := range CodeValues() {
		parsed, err := CodeString(code.String())
		require.NoErrorf(t, err, "Round trip of %s", code)
		require.Equal(t, code, parsed)
		require.True(t, code.IsACode())
	}
	require.Equal(t, "ErrDriver", ErrDriver.String())

	parsed, err := CodeString("errnomemory")
	require.NoError(t, err, "Lowercase lookups are supported")
	require.Equal(t, ErrNoMemory, parsed)

	require.Equal(t, "Code(7)", Code(7).String())
	require.False(t, Code(7).IsACode())
	_, err = CodeString("NotACode")
	require.Error(t, err)

	fmt.Printf("Binding status codes: %v\n", CodeStrings())
}
