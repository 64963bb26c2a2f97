package schema

// Enum for port congestion
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// PortFeeProfile is static reference data for one port. Immutable at runtime.
type PortFeeProfile struct {
	Code             string          `json:"code" yaml:"code"`
	Name             string          `json:"name" yaml:"name"`
	Country          string          `json:"country" yaml:"country"`
	PortCharges      float64         `json:"portCharges" yaml:"portCharges"`
	TerminalHandling float64         `json:"terminalHandling" yaml:"terminalHandling"`
	Documentation    float64         `json:"documentation" yaml:"documentation"`
	FreeDays         int             `json:"freeDays" yaml:"freeDays"`
	DemurrageRate    float64         `json:"demurrageRate" yaml:"demurrageRate"`
	CongestionLevel  CongestionLevel `json:"congestionLevel" yaml:"congestionLevel"`
	Notes            string          `json:"notes,omitempty" yaml:"notes"`
}

// ContainerType codes covered by the multiplier table.
type ContainerType string

const (
	C20GP ContainerType = "20GP"
	C20HC ContainerType = "20HC"
	C40GP ContainerType = "40GP"
	C40HC ContainerType = "40HC"
	C45HC ContainerType = "45HC"
	C20RF ContainerType = "20RF"
	C40RF ContainerType = "40RF"
	C40RH ContainerType = "40RH"
	C40OT ContainerType = "40OT"
	C40FR ContainerType = "40FR"
)
