package config

import (
	"github.com/LdDl/gaze-go/gaze"
	"github.com/pkg/errors"
)

// DefaultDeviceProfilePath is profile of the device calibration data was collected on
const DefaultDeviceProfilePath = "config/devices/ipad-mini-6.json"

// DeviceProfile holds constants of a device display.
// Pixel density and scale are not exposed by the platform, so they come from the profile
type DeviceProfile struct {
	Name          string  `json:"name"`
	WidthPixels   int     `json:"width_pixels"`
	HeightPixels  int     `json:"height_pixels"`
	PixelsPerInch float64 `json:"pixels_per_inch"`
	Scale         float64 `json:"scale"`
}

// LoadDeviceProfile loads and validates device profile
func LoadDeviceProfile(path string) (*DeviceProfile, error) {
	profile := &DeviceProfile{}
	if err := readJSON(path, profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid device profile '%s'", path)
	}
	return profile, nil
}

// Validate checks that profile describes usable screen
func (p *DeviceProfile) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return p.Screen().Validate()
}

// Screen returns screen geometry of the device
func (p *DeviceProfile) Screen() gaze.Screen {
	return gaze.Screen{
		WidthPixels:   p.WidthPixels,
		HeightPixels:  p.HeightPixels,
		PixelsPerInch: p.PixelsPerInch,
		Scale:         p.Scale,
	}
}
