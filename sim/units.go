package sim

// VCPU is the number of raw cpu demand units (cgroup cpu shares) in one vCPU.
const VCPU = 1024

// MBPerGB is the divisor used when reporting memory in GB. Memory is modelled
// in MB and reported with a decimal divisor, not 1024.
const MBPerGB = 1000

// ToVCPU converts raw cpu units to vCPU for display.
func ToVCPU(units int64) float64 {
	return float64(units) / VCPU
}

// ToGB converts MB to whole GB for display (integer division).
func ToGB(mb int64) int64 {
	return mb / MBPerGB
}

// Resource names a resource dimension tracked by an Instance.
type Resource string

const (
	ResourceCPU Resource = "cpu"
	ResourceMem Resource = "mem"
)
