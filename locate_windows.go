package gocuda

const (
	runtimeLibName = "cudart64_*.dll"
	driverLibName  = "nvcuda.dll"
)

var runtimeLibGlobs = []string{
	"c:\\Program Files\\NVIDIA GPU Computing Toolkit\\CUDA\\v*\\bin\\cudart64_*.dll",
}

var driverLibGlobs = []string{
	"c:\\windows\\system*\\nvcuda.dll",
}
