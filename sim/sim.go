// Package sim implements the cudart.Runtime surface in pure Go: a
// configurable set of virtual devices with deterministic properties.
//
// The package serves two purposes. The gocuda tests run against it, using
// its journals to assert on what the manager did to the platform, and its
// failure knobs to reproduce driver conditions (unavailable devices, interop
// probes failing, missing version queries) that are hard to arrange on real
// hardware. It also works as a stand-in backend for developing on machines
// without a GPU, which is how the gocudainfo command uses it.
package sim

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/emberml/gocuda/cudart"
)

// Handle kinds, as reported by Handle.Kind and accepted by the failure and
// journal accessors.
const (
	KindBlas   = "blas"
	KindSolver = "solver"
	KindSparse = "sparse"
)

var _ cudart.Runtime = (*Driver)(nil)

type handleKey struct {
	kind   string
	device int
}

// Driver is a virtual CUDA platform. Its native device ids follow the order
// of the specs given to New. The zero value is not usable, always construct
// with New.
type Driver struct {
	mu      sync.Mutex
	devices []cudart.DeviceProps
	current int

	runtimeVersion  int
	driverVersion   int
	driverString    string
	driverStringErr error
	glErr           error

	propsErr  map[int]error
	streamErr map[int]error
	handleErr map[string]error

	setDeviceCalls int
	glQueries      int
	streamsCreated map[int]int
	handlesCreated map[handleKey]int
}

// New builds a driver exposing one virtual device per spec, in native-id
// order. No specs means no devices, the way an empty machine looks. Device
// UUIDs are derived from the native id and name, so a rebuilt driver reports
// the same boards.
func New(specs ...DeviceSpec) *Driver {
	d := &Driver{
		devices:        make([]cudart.DeviceProps, 0, len(specs)),
		runtimeVersion: 11040,
		driverVersion:  11040,
		driverString:   "NVIDIA UNIX x86_64 Kernel Module  470.57.02",
		propsErr:       make(map[int]error),
		streamErr:      make(map[int]error),
		handleErr:      make(map[string]error),
		streamsCreated: make(map[int]int),
		handlesCreated: make(map[handleKey]int),
	}
	for i, spec := range specs {
		d.devices = append(d.devices, cudart.DeviceProps{
			Name:                spec.Name,
			UUID:                uuid.NewSHA1(uuid.NameSpaceOID, []byte("gocuda-sim:"+strconv.Itoa(i)+":"+spec.Name)),
			Major:               spec.Major,
			Minor:               spec.Minor,
			TotalGlobalMem:      spec.MemoryBytes,
			MultiProcessorCount: spec.MultiProcessors,
			ClockRateKHz:        spec.ClockRateKHz,
			TCCDriver:           spec.TCC,
		})
	}
	return d
}

// DeviceCount implements cudart.Runtime.
func (d *Driver) DeviceCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.devices), nil
}

// DeviceProperties implements cudart.Runtime.
func (d *Driver) DeviceProperties(nativeID int) (cudart.DeviceProps, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if nativeID < 0 || nativeID >= len(d.devices) {
		return cudart.DeviceProps{}, errors.Errorf("no device with native id %d", nativeID)
	}
	if err := d.propsErr[nativeID]; err != nil {
		return cudart.DeviceProps{}, err
	}
	return d.devices[nativeID], nil
}

// SetDevice implements cudart.Runtime.
func (d *Driver) SetDevice(nativeID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if nativeID < 0 || nativeID >= len(d.devices) {
		return errors.Errorf("no device with native id %d", nativeID)
	}
	d.current = nativeID
	d.setDeviceCalls++
	return nil
}

// NewStream implements cudart.Runtime. Streams land on the current device.
func (d *Driver) NewStream() (cudart.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.streamErr[d.current]; err != nil {
		return nil, err
	}
	d.streamsCreated[d.current]++
	return &Stream{device: d.current}, nil
}

// NewBlasHandle implements cudart.Runtime.
func (d *Driver) NewBlasHandle() (cudart.BlasHandle, error) {
	return d.newHandle(KindBlas)
}

// NewSolverHandle implements cudart.Runtime.
func (d *Driver) NewSolverHandle() (cudart.SolverHandle, error) {
	return d.newHandle(KindSolver)
}

// NewSparseHandle implements cudart.Runtime.
func (d *Driver) NewSparseHandle() (cudart.SparseHandle, error) {
	return d.newHandle(KindSparse)
}

func (d *Driver) newHandle(kind string) (*Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.handleErr[kind]; err != nil {
		return nil, err
	}
	d.handlesCreated[handleKey{kind, d.current}]++
	return &Handle{kind: kind, device: d.current}, nil
}

// RuntimeVersion implements cudart.Runtime.
func (d *Driver) RuntimeVersion() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runtimeVersion, nil
}

// DriverVersion implements cudart.Runtime.
func (d *Driver) DriverVersion() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.driverVersion, nil
}

// DriverVersionString implements cudart.Runtime.
func (d *Driver) DriverVersionString() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.driverStringErr != nil {
		return "", d.driverStringErr
	}
	if d.driverString == "" {
		return "", errors.Wrap(cudart.ErrNotSupported, "driver version string")
	}
	return d.driverString, nil
}

// GLDeviceCount implements cudart.Runtime. Devices in TCC mode cannot
// service interop; when every device is, the query reports the same
// OS-support failure the real platform does.
func (d *Driver) GLDeviceCount(deviceCount int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.glQueries++
	if d.glErr != nil {
		return 0, d.glErr
	}
	if deviceCount > len(d.devices) {
		deviceCount = len(d.devices)
	}
	capable := 0
	for _, props := range d.devices[:deviceCount] {
		if !props.TCCDriver {
			capable++
		}
	}
	if capable == 0 {
		return 0, errors.Wrap(cudart.ErrOSSupport, "all devices in TCC mode")
	}
	return capable, nil
}

// CurrentDevice returns the native id the driver's context points at.
func (d *Driver) CurrentDevice() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// FailProperties makes the property query of a native device fail with err;
// nil clears the failure.
func (d *Driver) FailProperties(nativeID int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.propsErr, nativeID)
		return
	}
	d.propsErr[nativeID] = err
}

// FailStreamCreate makes stream creation on a native device fail with err;
// nil clears the failure. Wrap cudart.ErrDeviceUnavailable to exercise the
// construction-time fallback scan.
func (d *Driver) FailStreamCreate(nativeID int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.streamErr, nativeID)
		return
	}
	d.streamErr[nativeID] = err
}

// FailHandleCreate makes creation of one handle kind fail with err on every
// device; nil clears the failure.
func (d *Driver) FailHandleCreate(kind string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.handleErr, kind)
		return
	}
	d.handleErr[kind] = err
}

// FailGLQuery makes the graphics-interop query fail with err; nil clears.
func (d *Driver) FailGLQuery(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.glErr = err
}

// SetVersions overrides the packed runtime and driver version numbers.
func (d *Driver) SetVersions(runtime, driver int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runtimeVersion = runtime
	d.driverVersion = driver
}

// SetDriverString overrides the human-readable driver description. The empty
// string makes the query report cudart.ErrNotSupported, the way platforms
// without the query do.
func (d *Driver) SetDriverString(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.driverString = s
	d.driverStringErr = nil
}

// FailDriverVersionString makes the human-readable driver query fail with an
// arbitrary error; nil reverts to SetDriverString behavior.
func (d *Driver) FailDriverVersionString(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.driverStringErr = err
}

// SetDeviceCalls returns how many context switches the driver has served.
func (d *Driver) SetDeviceCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setDeviceCalls
}

// GLQueries returns how many graphics-interop queries the driver has served.
func (d *Driver) GLQueries() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.glQueries
}

// StreamsCreated returns how many streams were created on a native device.
func (d *Driver) StreamsCreated(nativeID int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streamsCreated[nativeID]
}

// HandlesCreated returns how many handles of one kind were created on a
// native device.
func (d *Driver) HandlesCreated(kind string, nativeID int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handlesCreated[handleKey{kind, nativeID}]
}
