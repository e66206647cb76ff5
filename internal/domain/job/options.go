package job

import "github.com/rpggio/freightline/internal/domain/sequence"

// Options configures job creation defaults.
type Options struct {
	// DefaultMode is applied when a create request omits the transport mode.
	DefaultMode string
	// Templates lists the required documents per transport mode.
	Templates map[sequence.Mode][]string
}

// DefaultTemplates returns the standard document checklist per mode.
func DefaultTemplates() map[sequence.Mode][]string {
	return map[sequence.Mode][]string{
		sequence.ModeSea:  {"Commercial Invoice", "Packing List", "Bill of Lading", "Certificate of Origin"},
		sequence.ModeAir:  {"Commercial Invoice", "Packing List", "Air Waybill"},
		sequence.ModeRoad: {"Commercial Invoice", "Packing List", "CMR Consignment Note"},
		sequence.ModeRail: {"Commercial Invoice", "Packing List", "Rail Consignment Note"},
	}
}

// DefaultOptions returns SEA as the fallback mode and the standard templates.
func DefaultOptions() Options {
	return Options{DefaultMode: string(sequence.ModeSea), Templates: DefaultTemplates()}
}
