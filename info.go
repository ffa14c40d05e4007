package gocuda

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/emberml/gocuda/cudart"
	"github.com/emberml/gocuda/hostmem"
	"github.com/emberml/gocuda/version"
)

// DeviceInfo formats one line describing a device: the logical id (bracketed
// when active, dashed otherwise), display name, memory rounded up to whole
// megabytes and the compute capability.
func (mgr *Manager) DeviceInfo(device int) string {
	props := mgr.DeviceProperties(device)

	id := fmt.Sprintf("-%d-", device)
	if mgr.ActiveDeviceID() == device {
		id = fmt.Sprintf("[%d]", device)
	}
	const mb = 1024 * 1024
	memMB := props.TotalGlobalMem / mb
	if props.TotalGlobalMem%mb != 0 {
		memMB++
	}
	return fmt.Sprintf("%s %s, %d MB, CUDA Compute %d.%d\n",
		id, props.Name, memMB, props.Major, props.Minor)
}

// PlatformInfo formats the toolkit and driver versions on one line.
func (mgr *Manager) PlatformInfo() (string, error) {
	driver, err := mgr.DriverVersion()
	if err != nil {
		return "", err
	}
	runtime, err := mgr.RuntimeVersion()
	if err != nil {
		return "", err
	}
	platform := "Platform: CUDA Toolkit " + runtime
	if driver != "" {
		platform += ", Driver: " + driver
	}
	return platform + "\n", nil
}

// AllInfo concatenates the library banner, the platform summary and one
// DeviceInfo line per device.
func (mgr *Manager) AllInfo() (string, error) {
	var report strings.Builder
	fmt.Fprintf(&report, "gocuda v%s (CUDA, %s, build %s)\n",
		version.Version, version.System(), version.Revision())
	platform, err := mgr.PlatformInfo()
	if err != nil {
		return "", err
	}
	report.WriteString(platform)
	for i := 0; i < mgr.DeviceCount(); i++ {
		report.WriteString(mgr.DeviceInfo(i))
	}
	return report.String(), nil
}

// DriverVersion returns a human-readable description of the installed
// driver. Platforms without the human-readable query fall back to rendering
// the raw driver version number; any other failure of the query is an error,
// those platforms are expected to have it.
func (mgr *Manager) DriverVersion() (string, error) {
	s, err := mgr.rt.DriverVersionString()
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, cudart.ErrNotSupported) {
		return "", errors.WithMessage(err, "querying driver version")
	}
	driver, err := mgr.rt.DriverVersion()
	if err != nil {
		return "", errors.WithMessage(err, "querying raw driver version")
	}
	return "CUDA Driver Version: " + strconv.Itoa(driver), nil
}

// RuntimeVersion renders the toolkit runtime version, 11040 as "11.4".
func (mgr *Manager) RuntimeVersion() (string, error) {
	runtime, err := mgr.rt.RuntimeVersion()
	if err != nil {
		return "", errors.WithMessage(err, "querying runtime version")
	}
	return formatRuntimeVersion(runtime), nil
}

func formatRuntimeVersion(packed int) string {
	if packed <= 0 {
		return strconv.Itoa(packed/1000) + ".0"
	}
	v := float64(packed/1000) + float64(packed%1000)/100
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// DeviceMemorySize returns a device's total global memory in bytes.
func (mgr *Manager) DeviceMemorySize(device int) uint64 {
	return mgr.DeviceProperties(device).TotalGlobalMem
}

// HostMemorySize returns the host's total physical memory in bytes.
func (mgr *Manager) HostMemorySize() (uint64, error) {
	return hostmem.Total()
}

// IsDoubleSupported reports whether a device supports double precision.
// Every CUDA device of the compute versions this package enumerates does.
func (mgr *Manager) IsDoubleSupported(device int) bool {
	return true
}

// DevicePropStrings returns the active device's display name (sanitized for
// single-token consumers), the platform name, the toolkit version and the
// compute capability, the tuple used by external monitoring surfaces.
func (mgr *Manager) DevicePropStrings() (name, platform, toolkit, compute string, err error) {
	props := mgr.DeviceProperties(mgr.ActiveDeviceID())
	runtime, err := mgr.RuntimeVersion()
	if err != nil {
		return "", "", "", "", err
	}
	compute = fmt.Sprintf("%d.%d", props.Major, props.Minor)
	return sanitizeName(props.Name), "CUDA", "v" + runtime, compute, nil
}

// sanitizeName rewrites inner spaces to underscores and truncates at the
// first doubled or trailing space, so the name survives whitespace-splitting
// consumers. Names are capped at 63 bytes.
func sanitizeName(name string) string {
	b := []byte(name)
	if len(b) > 63 {
		b = b[:63]
	}
	for i := 0; i < len(b); i++ {
		if b[i] != ' ' {
			continue
		}
		if i+1 == len(b) || b[i+1] == ' ' {
			return string(b[:i])
		}
		b[i] = '_'
	}
	return string(b)
}
